// Package ingest loads slot payload files from disk into a store.
//
// Files are laid out as <root>/<subject>/<YYYY-MM-DD>/<HH-MM>.json, one
// document per slot.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"emotionagg/internal/aggregate"
	"emotionagg/internal/grid"
	"emotionagg/internal/store"
)

type Store interface {
	PutSlot(ctx context.Context, p store.SlotPayload) error
}

type Result struct {
	PayloadsStored int
	FilesSkipped   int
	Errors         []error
}

type Options struct {
	// Subject and Date, when set, restrict the walk to matching directories.
	Subject string
	Date    string
	Exclude []string
}

func Run(ctx context.Context, roots []string, db Store, options Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &Result{}

	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		files, err := walkPayloadFiles(root, options.Exclude)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			subject, date, slot, ok := slotFromPath(root, path)
			if !ok {
				logger.Debug("skipping file outside the subject/date/slot layout", zap.String("path", path))
				result.FilesSkipped++
				continue
			}
			if options.Subject != "" && options.Subject != subject {
				result.FilesSkipped++
				continue
			}
			if options.Date != "" && options.Date != date {
				result.FilesSkipped++
				continue
			}

			data, err := os.ReadFile(path)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
				continue
			}
			body, err := store.DecodeBody(data)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
				continue
			}

			p := store.SlotPayload{Subject: subject, Date: date, TimeBlock: slot, Body: body}
			if err := db.PutSlot(ctx, p); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing %s: %w", path, err))
				continue
			}
			result.PayloadsStored++
		}
	}

	return result, nil
}

func walkPayloadFiles(root string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// slotFromPath maps <root>/<subject>/<date>/<HH-MM>.json to its key parts.
func slotFromPath(root, path string) (subject, date, slot string, ok bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return "", "", "", false
	}
	subject, date = parts[0], parts[1]
	slot = strings.TrimSuffix(parts[2], filepath.Ext(parts[2]))
	if subject == "" || !grid.IsSlot(slot) || aggregate.ValidateDate(date) != nil {
		return "", "", "", false
	}
	return subject, date, slot, true
}
