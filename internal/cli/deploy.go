package cli

import (
	"fmt"

	"github.com/emmy-sama/civmod/pkg/claims"
	"github.com/emmy-sama/civmod/pkg/deploy"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newDeployCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy enabled mods into the game's Mods directory",
		Long: `Deploy clears the game's Mods directory and copies in the files of
every enabled mod, in mod ID order. When two enabled mods claim the same
file the later one wins; the loser is reported as skipped. Individual
copy failures are reported and the rest of the run continues.

The Mods directory is fully owned by civmod: anything placed there by
hand is removed on the next deploy.`,
		Example: `  # Deploy the current enabled set
  civmod deploy

  # Skip the confirmation prompt
  civmod deploy --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, p, err := openSession()
			if err != nil {
				return err
			}

			enabled := s.Enabled()
			if groups := s.Conflicts(); len(groups) > 0 {
				pterm.Warning.Printfln("%d file conflict(s) among enabled mods; run \"civmod conflicts\" for details", len(groups))
			}

			if cfg.Deploy.Confirm && !yes {
				prompt := fmt.Sprintf("Clear %s and deploy %d mod(s)?", p.GameModsDir(), len(enabled))
				if !confirm(prompt) {
					pterm.Info.Println("Aborted.")
					return nil
				}
			}

			var total int
			for _, id := range enabled {
				m, err := s.Get(id)
				if err != nil {
					return err
				}
				total += len(claims.ClaimedActions(m))
			}

			bar, _ := pterm.DefaultProgressbar.
				WithTotal(total).
				WithTitle("Deploying").
				Start()

			result, err := s.Deploy(cmd.Context(), func(fr deploy.FileResult) {
				bar.Increment()
			})
			_, _ = bar.Stop()
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Deployed %d file(s) from %d mod(s)", result.Copied, len(enabled))
			if result.Skipped > 0 {
				pterm.Info.Printfln("%d file(s) skipped as conflict losers", result.Skipped)
			}
			if result.Failed > 0 {
				pterm.Warning.Printfln("%d file(s) failed to copy:", result.Failed)
				for _, fr := range result.Files {
					if fr.Outcome == deploy.OutcomeFailed {
						pterm.Warning.Printfln("  %s (%s): %s", fr.TargetPath, fr.PackageID, fr.Err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
