package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Save and restore named sets of enabled mods",
		Long: `Profiles snapshot the enabled set under a name. Loading a profile
replaces the current enabled set; mods the profile names that are no
longer installed are reported and skipped.`,
	}

	cmd.AddCommand(newProfileSaveCmd())
	cmd.AddCommand(newProfileLoadCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	cmd.AddCommand(newProfileExportCmd())
	cmd.AddCommand(newProfileImportCmd())
	return cmd
}

func newProfileSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current enabled set as a profile",
		Example: `  civmod profile save multiplayer`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}
			if err := s.SaveProfile(args[0]); err != nil {
				return err
			}
			pterm.Success.Printfln("Saved profile %q with %d mod(s)", args[0], len(s.Enabled()))
			return nil
		},
	}
}

func newProfileLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Replace the enabled set with a saved profile",
		Example: `  civmod profile load multiplayer`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			applied, missing, err := s.LoadProfile(args[0])
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Loaded profile %q: %d mod(s) enabled", args[0], len(applied))
			if len(missing) > 0 {
				pterm.Warning.Printfln("Not installed, skipped: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List saved profiles",
		Example: `  civmod profile list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			names, err := s.Profiles()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println(mutedStyle.Render("No profiles saved."))
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a saved profile",
		Example: `  civmod profile delete multiplayer`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}
			if err := s.DeleteProfile(args[0]); err != nil {
				return err
			}
			pterm.Success.Printfln("Deleted profile %q", args[0])
			return nil
		},
	}
}

func newProfileExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a profile as YAML",
		Long: `Export writes a profile as YAML, suitable for sharing. Without
--output the YAML goes to stdout.`,
		Example: `  civmod profile export multiplayer --output multiplayer.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			data, err := s.ExportProfile(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("cannot write %s: %w", output, err)
			}
			pterm.Success.Printfln("Exported profile %q to %s", args[0], output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newProfileImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "import <name> <file>",
		Short:   "Import a YAML profile export",
		Example: `  civmod profile import shared multiplayer.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", args[1], err)
			}
			if err := s.ImportProfile(args[0], data); err != nil {
				return err
			}
			pterm.Success.Printfln("Imported profile %q", args[0])
			return nil
		},
	}
}
