package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newUninstallCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "uninstall <mod-id>...",
		Short: "Remove installed mods",
		Long: `Uninstall removes mods from civmod's storage, drops them from the
enabled set, and strips them from every saved profile. The game's Mods
directory is untouched until the next deploy.`,
		Example: `  # Remove a mod
  civmod uninstall cool-ui

  # Remove without the confirmation prompt
  civmod uninstall cool-ui --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			for _, id := range args {
				if _, err := s.Get(id); err != nil {
					return err
				}
			}

			if !yes && !confirm(fmt.Sprintf("Uninstall %d mod(s)?", len(args))) {
				pterm.Info.Println("Aborted.")
				return nil
			}

			for _, id := range args {
				if err := s.Uninstall(id); err != nil {
					return err
				}
				pterm.Success.Printfln("Uninstalled %s", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
