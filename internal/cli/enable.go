package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newEnableCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "enable <mod-id>...",
		Short: "Enable installed mods",
		Long: `Enable marks mods for deployment. The change only affects the game
after the next "civmod deploy". Enabling warns about missing declared
dependencies but never blocks.`,
		Example: `  # Enable one mod
  civmod enable cool-ui

  # Enable everything installed
  civmod enable --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("specify mod IDs or --all")
			}

			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			if all {
				if err := s.EnableAll(); err != nil {
					return err
				}
				pterm.Success.Printfln("Enabled all %d installed mod(s)", len(s.Enabled()))
			} else {
				for _, id := range args {
					if err := s.Enable(id); err != nil {
						return err
					}
					pterm.Success.Printfln("Enabled %s", id)
				}
			}

			warnMissingDependencies(s.MissingDependencies())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Enable every installed mod")
	return cmd
}

func newDisableCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "disable <mod-id>...",
		Short: "Disable enabled mods",
		Long: `Disable removes mods from the deployment set. The mods stay installed
and keep their place in saved profiles.`,
		Example: `  # Disable one mod
  civmod disable cool-ui

  # Disable everything
  civmod disable --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("specify mod IDs or --all")
			}

			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			if all {
				if err := s.DisableAll(); err != nil {
					return err
				}
				pterm.Success.Println("Disabled all mods")
				return nil
			}

			for _, id := range args {
				if err := s.Disable(id); err != nil {
					return err
				}
				pterm.Success.Printfln("Disabled %s", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Disable every mod")
	return cmd
}

func warnMissingDependencies(missing map[string][]string) {
	if len(missing) == 0 {
		return
	}
	ids := make([]string, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		pterm.Warning.Printfln("%s depends on mods that are not installed: %s",
			id, strings.Join(missing[id], ", "))
	}
}
