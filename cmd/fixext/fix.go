package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"photo-gallery/internal/formats"
	"photo-gallery/internal/logging"

	"golang.org/x/sync/errgroup"
)

const logFlushTimeout = 2 * time.Second

// Rename is one planned extension correction.
type Rename struct {
	From string
	To   string
}

// Plan is the outcome of scanning a directory tree.
type Plan struct {
	Renames []Rename
	Scanned int
	Skipped int
}

// scan sniffs every regular file under root with at most limit files in
// flight. Hidden files and directories are not visited. Files that are not
// a recognised image are counted as skipped.
func scan(ctx context.Context, root string, limit int) (Plan, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Plan{}, err
	}
	if !info.IsDir() {
		return Plan{}, fmt.Errorf("%s is not a directory", root)
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	var (
		mu   sync.Mutex
		plan Plan
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		g.Go(func() error {
			corrected, err := formats.CorrectExtension(path)

			mu.Lock()
			defer mu.Unlock()
			plan.Scanned++

			switch {
			case errors.Is(err, formats.ErrNotReadable), errors.Is(err, formats.ErrUnsupportedFormat):
				logging.Debug("fixext: skipping %s: %v", path, err)
				plan.Skipped++
			case err != nil:
				return err
			case corrected != path:
				plan.Renames = append(plan.Renames, Rename{From: path, To: corrected})
			}
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return Plan{}, err
	}
	if walkErr != nil {
		return Plan{}, walkErr
	}

	sort.Slice(plan.Renames, func(i, j int) bool {
		return plan.Renames[i].From < plan.Renames[j].From
	})
	return plan, nil
}

// FailedRename pairs a rename with the error that stopped it.
type FailedRename struct {
	Rename Rename
	Err    error
}

// Result summarises applyRenames.
type Result struct {
	Renamed   int
	Conflicts []Rename
	Failed    []FailedRename
}

// applyRenames performs the renames in order. A rename whose target already
// exists is reported as a conflict and left alone.
func applyRenames(renames []Rename) Result {
	var result Result
	for _, r := range renames {
		if _, err := os.Lstat(r.To); err == nil {
			result.Conflicts = append(result.Conflicts, r)
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			result.Failed = append(result.Failed, FailedRename{Rename: r, Err: err})
			continue
		}

		if err := os.Rename(r.From, r.To); err != nil {
			result.Failed = append(result.Failed, FailedRename{Rename: r, Err: err})
			continue
		}
		logging.Info("fixext: renamed %s -> %s", r.From, r.To)
		result.Renamed++
	}
	return result
}
