// Package deploy copies the claim-bearing files of enabled packages into
// the game's Mods directory. The target is cleared before every run, so a
// deployment fully reflects the current enabled set.
package deploy

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/emmy-sama/civmod/pkg/claims"
	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/logging"
	"github.com/emmy-sama/civmod/pkg/modinfo"
	"github.com/rs/zerolog"
)

// Outcome classifies what happened to one deployable file.
type Outcome string

const (
	// OutcomeCopied means the file landed in the target directory.
	OutcomeCopied Outcome = "copied"

	// OutcomeSkippedConflictLoser means a later package claimed the same
	// target path and overwrote this one.
	OutcomeSkippedConflictLoser Outcome = "skipped-conflict-loser"

	// OutcomeFailed means the copy failed; the run continued without it.
	OutcomeFailed Outcome = "failed"
)

// FileResult records the outcome for a single file of a single package.
type FileResult struct {
	PackageID  string
	TargetPath string
	Outcome    Outcome
	Err        error
}

// Result summarizes a deployment run.
type Result struct {
	Files   []FileResult
	Copied  int
	Skipped int
	Failed  int
}

// Engine deploys packages into a fixed target directory.
type Engine struct {
	fs     fsutil.FS
	target string
	logger zerolog.Logger
}

// New creates an engine deploying into targetDir.
func New(fs fsutil.FS, targetDir string) *Engine {
	return &Engine{
		fs:     fs,
		target: targetDir,
		logger: logging.GetLogger("deploy"),
	}
}

// Target returns the directory the engine deploys into.
func (e *Engine) Target() string { return e.target }

// Deploy clears the target directory and copies every claim-bearing file
// of the given packages, in the order given. When two packages claim the
// same target path the later one wins and the earlier file's result flips
// to skipped-conflict-loser. Individual copy failures are recorded and the
// run continues; only a failure to clear or recreate the target aborts.
// Cancellation is honored between files, never mid-copy.
func (e *Engine) Deploy(ctx context.Context, packages []*modinfo.ModInfo, progress func(FileResult)) (*Result, error) {
	if err := e.clearTarget(); err != nil {
		return nil, err
	}

	result := &Result{}
	winner := make(map[string]int)    // normalized target path -> index into result.Files
	placed := make(map[string]string) // normalized target path -> physical path written

	for _, m := range packages {
		for _, action := range claims.ClaimedActions(m) {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			deployPath := physicalPath(action)
			fr := FileResult{PackageID: m.ID, TargetPath: action.TargetPath}
			if err := e.copyFile(m, action, deployPath); err != nil {
				fr.Outcome = OutcomeFailed
				fr.Err = err
				result.Failed++
				e.logger.Warn().Err(err).
					Str("package", m.ID).
					Str("target", action.TargetPath).
					Msg("file deployment failed")
			} else {
				fr.Outcome = OutcomeCopied
				result.Copied++
				// The earlier claimant loses only once the overwrite has
				// actually landed; a failed overwrite leaves its file (and
				// its outcome) in place.
				if prev, ok := winner[action.TargetPath]; ok && result.Files[prev].Outcome == OutcomeCopied {
					result.Files[prev].Outcome = OutcomeSkippedConflictLoser
					result.Copied--
					result.Skipped++
				}
				// Conflicting claims may declare different casings of the
				// same logical path; on case-sensitive filesystems the
				// loser's file must go.
				if prevPath, ok := placed[action.TargetPath]; ok && prevPath != deployPath {
					_ = e.fs.Remove(filepath.Join(e.target, filepath.FromSlash(prevPath)))
				}
				placed[action.TargetPath] = deployPath
				winner[action.TargetPath] = len(result.Files)
			}

			result.Files = append(result.Files, fr)
			if progress != nil {
				progress(fr)
			}
		}
	}

	e.logger.Info().
		Int("copied", result.Copied).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("deployment finished")
	return result, nil
}

// Clear empties the target directory without deploying anything.
func (e *Engine) Clear() error {
	return e.clearTarget()
}

func (e *Engine) clearTarget() error {
	if err := e.fs.RemoveAll(e.target); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to clear deployment target").
			WithDetail("path", e.target)
	}
	if err := e.fs.MkdirAll(e.target, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to recreate deployment target").
			WithDetail("path", e.target)
	}
	return nil
}

// physicalPath is the path written under the target directory: the
// declared casing when available, the normalized key otherwise.
func physicalPath(action modinfo.FileAction) string {
	if action.TargetRel != "" {
		return action.TargetRel
	}
	return action.TargetPath
}

func (e *Engine) copyFile(m *modinfo.ModInfo, action modinfo.FileAction, deployPath string) error {
	if strings.HasPrefix(action.TargetPath, "..") {
		return errors.Newf(errors.ErrInvalidInput, "target path escapes deployment directory").
			WithDetail("target", action.TargetPath)
	}

	src := filepath.Join(m.InstallPath, filepath.FromSlash(action.SourceRel))
	dst := filepath.Join(e.target, filepath.FromSlash(deployPath))

	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to read source file").
			WithDetail("path", src)
	}
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to create target directory").
			WithDetail("path", filepath.Dir(dst))
	}
	if err := e.fs.WriteFile(dst, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to write target file").
			WithDetail("path", dst)
	}
	return nil
}
