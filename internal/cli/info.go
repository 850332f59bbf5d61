package cli

import (
	"fmt"
	"strings"

	"github.com/emmy-sama/civmod/pkg/claims"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <mod-id>",
		Short: "Show details for an installed mod",
		Long: `Info prints a mod's metadata: version, authors, declared dependencies,
saved-game compatibility, and the files it will place in the game's Mods
directory when deployed.`,
		Example: `  civmod info cool-ui`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			m, err := s.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Println(titleStyle.Render(m.DisplayName))
			printField("ID", m.ID)
			printField("Version", m.Version)
			if len(m.Authors) > 0 {
				printField("Authors", strings.Join(m.Authors, ", "))
			}
			printField("Saved games", m.SaveCompat.String())
			printField("Enabled", fmt.Sprintf("%v", s.IsEnabled(m.ID)))
			printField("Location", m.InstallPath)

			if len(m.Dependencies) > 0 {
				missing := make(map[string]bool)
				for _, dep := range s.MissingDependencies()[m.ID] {
					missing[dep] = true
				}

				fmt.Println()
				fmt.Println(titleStyle.Render("Dependencies"))
				for _, dep := range m.Dependencies {
					if missing[dep] {
						fmt.Printf("  %s %s\n", dep, errStyle.Render("(missing)"))
					} else {
						fmt.Printf("  %s\n", dep)
					}
				}
			}

			claimed := claims.ClaimedActions(m)
			if len(claimed) > 0 {
				fmt.Println()
				fmt.Println(titleStyle.Render("Deployed files"))
				for _, action := range claimed {
					shown := action.TargetRel
					if shown == "" {
						shown = action.TargetPath
					}
					fmt.Printf("  %s %s\n", shown, mutedStyle.Render(string(action.Kind)))
				}
			}
			return nil
		},
	}
}

func printField(name, value string) {
	fmt.Printf("  %-12s %s\n", name, value)
}
