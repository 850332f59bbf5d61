package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emmy-sama/civmod/pkg/conflicts"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed mods",
		Long: `List shows every installed mod with its enabled state. Mods whose
claimed files collide with another enabled mod are marked; run
"civmod conflicts" for the file-level breakdown.`,
		Example: `  # List all installed mods
  civmod list

  # Only the enabled ones
  civmod list --enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			packages := s.Packages()
			if len(packages) == 0 {
				fmt.Println(mutedStyle.Render("No mods installed."))
				return nil
			}

			groups := s.Conflicts()
			var out strings.Builder
			out.WriteString(titleStyle.Render("Installed mods") + "\n\n")

			var shown int
			for _, m := range packages {
				enabled := s.IsEnabled(m.ID)
				if enabledOnly && !enabled {
					continue
				}
				shown++

				marker := mutedStyle.Render("[ ]")
				if enabled {
					marker = enabledStyle.Render("[x]")
				}

				line := fmt.Sprintf("%s %s %s", marker, m.DisplayName, mutedStyle.Render(m.Version))
				if m.DisplayName != m.ID {
					line += " " + mutedStyle.Render("("+m.ID+")")
				}
				if len(conflicts.Involving(groups, m.ID)) > 0 {
					line += " " + warnStyle.Render("(conflicts)")
				}
				out.WriteString(line + "\n")
			}

			if shown == 0 {
				fmt.Println(mutedStyle.Render("No mods enabled."))
				return nil
			}
			fmt.Print(out.String())

			missing := s.MissingDependencies()
			if len(missing) > 0 {
				ids := make([]string, 0, len(missing))
				for id := range missing {
					ids = append(ids, id)
				}
				sort.Strings(ids)

				fmt.Println()
				for _, id := range ids {
					fmt.Println(warnStyle.Render(
						fmt.Sprintf("%s is missing dependencies: %s", id, strings.Join(missing[id], ", "))))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Show only enabled mods")
	return cmd
}
