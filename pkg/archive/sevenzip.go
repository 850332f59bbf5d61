package archive

import (
	"os"

	"github.com/bodgit/sevenzip"
	"github.com/emmy-sama/civmod/pkg/errors"
)

func extract7z(archivePath, destDir string) error {
	reader, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return corrupt(err, archivePath)
	}
	defer func() { _ = reader.Close() }()

	for _, entry := range reader.File {
		dest, err := entryDest(destDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return errors.Wrap(err, errors.ErrIOFailure, "failed to create directory").
					WithDetail("path", dest)
			}
			continue
		}

		src, err := entry.Open()
		if err != nil {
			return errors.Wrapf(err, errors.ErrCorruptArchive, "failed to open archive entry %q", entry.Name)
		}
		err = writeEntry(src, dest)
		_ = src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func list7z(archivePath string) ([]string, error) {
	reader, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, corrupt(err, archivePath)
	}
	defer func() { _ = reader.Close() }()

	entries := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		entries = append(entries, entry.Name)
	}
	return entries, nil
}
