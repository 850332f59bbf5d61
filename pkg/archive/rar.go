package archive

import (
	"io"
	"os"

	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/nwaples/rardecode/v2"
)

func extractRar(archivePath, destDir string) error {
	reader, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return corrupt(err, archivePath)
	}
	defer func() { _ = reader.Close() }()

	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return corrupt(err, archivePath)
		}

		dest, err := entryDest(destDir, header.Name)
		if err != nil {
			return err
		}
		if header.IsDir {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return errors.Wrap(err, errors.ErrIOFailure, "failed to create directory").
					WithDetail("path", dest)
			}
			continue
		}
		if err := writeEntry(reader, dest); err != nil {
			return err
		}
	}
}

func listRar(archivePath string) ([]string, error) {
	reader, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, corrupt(err, archivePath)
	}
	defer func() { _ = reader.Close() }()

	var entries []string
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, corrupt(err, archivePath)
		}
		entries = append(entries, header.Name)
	}
}
