// Package archive provides the extraction capability the package store
// consumes: expand an archive into a directory, or list its entries,
// for the three container formats mod archives come in.
package archive

import (
	"path/filepath"
	"strings"

	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/logging"
)

type extractor struct {
	extract func(archivePath, destDir string) error
	list    func(archivePath string) ([]string, error)
}

// extractors dispatches on the archive file extension.
var extractors = map[string]extractor{
	".zip": {extract: extractZip, list: listZip},
	".7z":  {extract: extract7z, list: list7z},
	".rar": {extract: extractRar, list: listRar},
	".r00": {extract: extractRar, list: listRar},
}

// Supported reports whether the path has a recognized archive extension.
func Supported(archivePath string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(archivePath))]
	return ok
}

// Extract expands the archive into destDir, which must already exist.
// Returns UNSUPPORTED_FORMAT for unrecognized extensions and
// CORRUPT_ARCHIVE when decoding fails partway; callers own cleanup of
// destDir in that case.
func Extract(archivePath, destDir string) error {
	ext := strings.ToLower(filepath.Ext(archivePath))
	ex, ok := extractors[ext]
	if !ok {
		return errors.Newf(errors.ErrUnsupportedFormat, "unsupported archive format %q", ext).
			WithDetail("archive", archivePath)
	}

	logger := logging.GetLogger("archive")
	logger.Debug().Str("archive", archivePath).Str("dest", destDir).Msg("extracting archive")

	if err := ex.extract(archivePath, destDir); err != nil {
		return err
	}
	return nil
}

// ListEntries returns the entry paths contained in the archive, in archive
// order, without extracting anything.
func ListEntries(archivePath string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(archivePath))
	ex, ok := extractors[ext]
	if !ok {
		return nil, errors.Newf(errors.ErrUnsupportedFormat, "unsupported archive format %q", ext).
			WithDetail("archive", archivePath)
	}
	return ex.list(archivePath)
}

// entryDest resolves an archive entry name inside destDir, rejecting
// entries that would escape it.
func entryDest(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", errors.Newf(errors.ErrCorruptArchive, "archive entry %q escapes extraction directory", name)
	}
	return filepath.Join(destDir, cleaned), nil
}

func corrupt(err error, archivePath string) *errors.Error {
	return errors.Wrap(err, errors.ErrCorruptArchive, "failed to read archive").
		WithDetail("archive", archivePath)
}
