package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emmy-sama/civmod/pkg/modinfo"
	"github.com/emmy-sama/civmod/pkg/store"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	var folder bool

	cmd := &cobra.Command{
		Use:   "install <path>...",
		Short: "Install mods from archives or directories",
		Long: `Install adds mods to civmod's storage. Each path may be a mod archive
(.zip, .7z, or .rar) or a directory containing an extracted mod. With
--folder, each path is treated as a directory of mods and every entry
inside it is installed independently.

Installing a mod whose ID is already present replaces the prior install.
Newly installed mods start out disabled.`,
		Example: `  # Install a downloaded archive
  civmod install ~/Downloads/cool-ui.zip

  # Install an extracted mod directory
  civmod install ~/Downloads/cool-ui/

  # Install every archive in a downloads folder
  civmod install --folder ~/Downloads/civ7-mods/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, _, err := openSession()
			if err != nil {
				return err
			}

			if folder {
				for _, path := range args {
					if err := installFolder(cmd, s.InstallFolder, path); err != nil {
						return err
					}
				}
				return nil
			}

			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("cannot read %s: %w", path, err)
				}

				var m *modinfo.ModInfo
				if info.IsDir() {
					m, err = s.InstallDir(cmd.Context(), path)
				} else {
					m, err = s.Install(cmd.Context(), path)
				}
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Installed %s %s", m.ID, m.Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&folder, "folder", false, "Treat each path as a folder of mods and install every entry")
	return cmd
}

type folderInstaller func(ctx context.Context, folder string, progress func(store.ItemResult)) ([]store.ItemResult, error)

func installFolder(cmd *cobra.Command, install folderInstaller, folder string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", folder, err)
	}

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(len(entries)).
		WithTitle("Installing from " + filepath.Base(folder)).
		Start()

	var installed, failed int
	_, err = install(cmd.Context(), folder, func(item store.ItemResult) {
		if item.Err != nil {
			failed++
			pterm.Warning.Printfln("%s: %s", filepath.Base(item.Source), item.Err)
		} else {
			installed++
		}
		bar.Increment()
	})
	_, _ = bar.Stop()
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Installed %d mod(s) from %s (%d failed)", installed, folder, failed)
	return nil
}
