package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/johnthesmith/cicd/internal/status"
	"github.com/johnthesmith/cicd/pkg/diff"
)

// ReplaceStats counts what a Replace pass did per file.
type ReplaceStats struct {
	Skipped  int
	NoMatch  int
	Replaced int
	Errors   int
}

// Replace substitutes placeholders in place in every file under path whose
// name matches one of includes (all files when empty) and none of excludes.
// Keys in excludeKeys are left untouched. Outside test mode files are
// rewritten; a file that cannot be read, resolved or written is counted and
// fails the run with ErrorReplaceInFile once the pass is over.
func (p *Pipeline) Replace(path string, includes, excludes, excludeKeys []string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	root := p.abs(p.Prep(path))
	inc, exc := p.PrepList(includes), p.PrepList(excludes)
	if !p.IsOk() {
		return p
	}
	write := !p.dryRun(false)

	var stats ReplaceStats
	err := filepath.WalkDir(root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			if file == root {
				return err
			}
			stats.Errors++
			p.log.Warn("replace walk failed", "file", file, "error", err.Error())
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !fileMatch(file, inc, exc) {
			stats.Skipped++
			p.log.Debug("replace skip", "file", file)
			return nil
		}

		data, err := os.ReadFile(file)
		if err != nil {
			stats.Errors++
			p.log.Warn("replace read failed", "file", file, "error", err.Error())
			return nil
		}
		source := string(data)
		result, err := p.params.Resolve(source, excludeKeys)
		if err != nil {
			stats.Errors++
			p.log.Warn("replace resolve failed", "file", file, "error", err.Error())
			return nil
		}
		if result == source {
			stats.NoMatch++
			p.log.Debug("replace no match", "file", file)
			return nil
		}

		stats.Replaced++
		inserted, deleted := diff.Changed(data, []byte(result))
		p.log.Debug("replace", "file", file, "write", write, "inserted", inserted, "deleted", deleted)
		if !write {
			p.log.Debug("replace preview", "file", file, "diff", diff.Lines(data, []byte(result), file))
			return nil
		}
		info, err := d.Info()
		if err != nil {
			stats.Errors++
			return nil
		}
		if err := os.WriteFile(file, []byte(result), info.Mode().Perm()); err != nil {
			stats.Errors++
			p.log.Warn("replace write failed", "file", file, "error", err.Error())
		}
		return nil
	})
	if err != nil {
		if write {
			p.lastReplace = stats
			p.status.SetResult(status.FolderNotExists, status.Context{"Folder": root, "Error": err.Error()})
			return p
		}
		p.log.Warn("replace path unavailable", "path", root, "error", err.Error())
	}

	p.log.Info("replace statistic",
		"path", root,
		"skipped", stats.Skipped,
		"no_match", stats.NoMatch,
		"replaced", stats.Replaced,
		"errors", stats.Errors,
	)
	p.lastReplace = stats
	if stats.Errors > 0 {
		p.status.SetResult(status.ErrorReplaceInFile, status.Context{"Count": stats.Errors})
	}
	return p
}

// LastReplace returns the statistics of the latest Replace pass.
func (p *Pipeline) LastReplace() ReplaceStats {
	return p.lastReplace
}

// fileMatch reports whether file passes the include and exclude masks. Masks
// are matched against the base name and against the full path.
func fileMatch(file string, includes, excludes []string) bool {
	if len(includes) > 0 && !anyMatch(file, includes) {
		return false
	}
	return !anyMatch(file, excludes)
}

func anyMatch(file string, masks []string) bool {
	base := filepath.Base(file)
	for _, mask := range masks {
		if ok, _ := filepath.Match(mask, base); ok {
			return true
		}
		if ok, _ := filepath.Match(mask, file); ok {
			return true
		}
	}
	return false
}
