package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Show file conflicts among enabled mods",
		Long: `Conflicts lists every deployed file path that two or more enabled mods
claim. Conflicts are advisory: deployment proceeds with last-writer-wins
in mod ID order, and the losing mods' files are reported as skipped.`,
		Example: `  civmod conflicts`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			groups := s.Conflicts()
			if len(groups) == 0 {
				fmt.Println(mutedStyle.Render("No conflicts among enabled mods."))
				return nil
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("%d conflicting file(s)", len(groups))))
			fmt.Println()
			for _, g := range groups {
				fmt.Printf("  %s\n", warnStyle.Render(g.TargetPath))
				fmt.Printf("    %s\n", mutedStyle.Render("claimed by "+strings.Join(g.PackageIDs, ", ")))
			}
			fmt.Println()
			fmt.Println(mutedStyle.Render("On deploy the last mod in ID order wins each file."))
			return nil
		},
	}
}
