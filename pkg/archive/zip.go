package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/emmy-sama/civmod/pkg/errors"
)

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
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
		if err := writeZipEntry(entry, dest); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrCorruptArchive, "failed to open archive entry %q", entry.Name)
	}
	defer func() { _ = src.Close() }()

	return writeEntry(src, dest)
}

func listZip(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
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

// writeEntry streams one archive entry to dest, creating parents as needed.
func writeEntry(src io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to create directory").
			WithDetail("path", filepath.Dir(dest))
	}
	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to create file").
			WithDetail("path", dest)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, src); err != nil {
		return errors.Wrap(err, errors.ErrCorruptArchive, "failed to decompress entry").
			WithDetail("path", dest)
	}
	return nil
}
