// Package cli wires the civmod commands together. Each command gets its
// own constructor; shared plumbing (session setup, styling) lives here.
package cli

import (
	"fmt"
	"os"

	"github.com/emmy-sama/civmod/internal/version"
	"github.com/emmy-sama/civmod/pkg/config"
	"github.com/emmy-sama/civmod/pkg/deploy"
	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/logging"
	"github.com/emmy-sama/civmod/pkg/paths"
	"github.com/emmy-sama/civmod/pkg/profiles"
	"github.com/emmy-sama/civmod/pkg/session"
	"github.com/emmy-sama/civmod/pkg/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "civmod",
		Short: "A mod manager for Sid Meier's Civilization VII",
		Long: `civmod installs, enables, and deploys Civilization VII mods from the
command line. Installed mods live in civmod's own storage; deployment
copies the enabled set into the game's Mods directory in one shot.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity, paths.New(paths.Options{}).LogFile())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUninstallCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newEnableCmd())
	rootCmd.AddCommand(newDisableCmd())
	rootCmd.AddCommand(newConflictsCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newDocsCmd())

	return rootCmd
}

// PrintError renders a top-level command failure to stderr.
func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if details := errors.DetailsOf(err); len(details) > 0 {
		for k, v := range details {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", k, v)
		}
	}
}

// openSession resolves paths and configuration and loads the manager
// state. Every command that touches packages goes through here.
func openSession() (*session.Session, *config.Config, *paths.Paths, error) {
	// The config file location comes from the default roots; the loaded
	// config may then relocate the data roots themselves.
	bootstrap := paths.New(paths.Options{})
	cfg, err := config.Load(bootstrap.ConfigFile())
	if err != nil {
		return nil, nil, nil, err
	}

	p := paths.New(paths.Options{
		DataDir:     cfg.Paths.DataDir,
		StateDir:    cfg.Paths.StateDir,
		GameModsDir: cfg.Paths.GameModsDir,
	})
	if err := p.EnsureAll(); err != nil {
		return nil, nil, nil, err
	}

	fs := fsutil.NewOS()
	s, err := session.New(session.Options{
		FS:        fs,
		Config:    cfg,
		Store:     store.New(fs, p.StorageDir(), p.StagingDir()),
		Profiles:  profiles.New(fs, p.ProfilesDir()),
		Engine:    deploy.New(fs, p.GameModsDir()),
		StateFile: p.StateFile(),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return s, cfg, p, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("civmod version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
