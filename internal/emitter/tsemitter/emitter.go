package tsemitter

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mark3labs/openapi2ts/internal/logger"
	"github.com/mark3labs/openapi2ts/internal/spec"
	"github.com/mark3labs/openapi2ts/internal/typegen"
)

// Options controls how compiled declarations are written.
type Options struct {
	OutDir string         // required; directory receiving one .ts file per unit
	Config typegen.Config // compilation settings
	Force  bool           // write into a non-empty directory
	DryRun bool           // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Unit    string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the compiled units.
type Result struct {
	Units   []*typegen.OutputUnit
	Planned []PlannedFile
}

// Emit compiles doc and writes every unit to <OutDir>/<unit>.ts. All units are
// rendered before the first write so a failing compilation writes nothing.
func Emit(ctx context.Context, doc *spec.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New("tsemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, errors.New("tsemitter: OutDir is required")
	}

	compiled, err := typegen.Compile(doc, opts.Config)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(compiled.Units))
	units := make(map[string]string, len(compiled.Units))
	for _, u := range compiled.Units {
		rel := u.Name + ".ts"
		files[rel] = typegen.Render(u, doc.Version)
		units[rel] = u.Name
		logger.Debugw("rendered unit",
			logger.FieldUnit, u.Name,
			logger.FieldSection, string(u.Section),
			logger.FieldCount, len(u.Declarations),
		)
	}

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Unit: units[rel], Size: len(files[rel]), Mode: 0o644})
	}

	if opts.DryRun {
		for _, pf := range planned {
			logger.Infow("planned file", logger.FieldFile, pf.RelPath, logger.FieldSize, pf.Size, logger.FieldDryRun, true)
		}
	} else if err := writeFiles(ctx, opts.OutDir, rels, files, opts.Force); err != nil {
		return nil, err
	}

	return &Result{Units: compiled.Units, Planned: planned}, nil
}

func writeFiles(ctx context.Context, outDir string, rels []string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return errors.Wrap(err, "resolve out dir")
	}
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return errors.WithHint(
				errors.Newf("tsemitter: output directory %q is not empty", abs),
				"use --force to overwrite",
			)
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(abs, rel)
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, files[rel], 0o644); err != nil {
			return errors.Wrapf(err, "write temp %s", rel)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return errors.Wrapf(err, "rename %s", rel)
		}
		logger.Infow("wrote file", logger.FieldFile, p, logger.FieldSize, len(files[rel]))
	}
	return nil
}
