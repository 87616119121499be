package pipeline

import (
	"os"
	"strings"

	"github.com/johnthesmith/cicd/internal/shell"
	"github.com/johnthesmith/cicd/internal/status"
)

// Rights applies chmod to every existing path. Outside test mode a missing
// path fails the run with PathNotFoundForChangeRights.
func (p *Pipeline) Rights(paths []string, rights string, recursive bool, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	mask := p.Prep(rights)
	for _, raw := range paths {
		path := p.Prep(raw)
		if !p.IsOk() {
			return p
		}
		if _, err := os.Stat(p.abs(path)); err != nil {
			if !p.mode.IsTest() {
				p.status.SetResult(status.PathNotFoundForChangeRights, status.Context{"Path": path})
				return p
			}
			p.log.Warn("path not found for chmod", "path", path)
			continue
		}

		sh := p.command(comment).CmdBegin().CmdAdd("chmod")
		if recursive {
			sh.CmdAdd("-R")
		}
		sh.CmdAdd(mask).FileAdd(path).CmdEnd(p.ctx, " ", p.dryRun(false)).ResultTo(p.status)
		if !p.IsOk() {
			return p
		}
	}
	return p
}

// Sync mirrors source into dest with rsync. Either side may be a
// login@host:/path target, which makes the transfer remote.
func (p *Pipeline) Sync(source, dest string, excludes []string, del bool, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	src, dst := p.Prep(source), p.Prep(dest)
	skip := p.PrepList(excludes)
	if !p.IsOk() {
		return p
	}
	if info, err := os.Stat(p.abs(src)); err == nil && info.IsDir() && !strings.HasSuffix(src, "/") {
		src += "/"
	}
	remote := shell.ParseTarget(src).Remote || shell.ParseTarget(dst).Remote

	p.CheckPath(dst)
	if !p.IsOk() {
		return p
	}

	sh := p.command(comment).CmdBegin().CmdAdd("rsync", "-rzaog")
	if remote {
		target := shell.ParseTarget(dst)
		if !target.Remote {
			target = shell.ParseTarget(src)
		}
		sh.FlagAdd("-e", []string{shell.SSHCommand(p.targetConnection(target))})
	}
	sh.FlagAdd("--exclude", skip)
	if del {
		sh.CmdAdd("--delete")
	}
	sh.FileAdd(src).FileAdd(dst).CmdEnd(p.ctx, " ", p.dryRun(remote)).ResultTo(p.status)
	return p
}

// Delete removes path recursively.
func (p *Pipeline) Delete(path, comment string) *Pipeline {
	return p.fileOp(comment, []string{"rm", "-rf"}, path)
}

// Move renames source to dest.
func (p *Pipeline) Move(source, dest, comment string) *Pipeline {
	return p.fileOp(comment, []string{"mv"}, source, dest)
}

// Copy copies source onto dest, preserving attributes.
func (p *Pipeline) Copy(source, dest, comment string) *Pipeline {
	return p.fileOp(comment, []string{"cp", "-aT"}, source, dest)
}

// CheckPath makes sure the folder exists. For a login@host:/path target a
// remote mkdir is attempted and its outcome ignored; a local folder that
// cannot be created fails the run with DirectoryCheckError.
func (p *Pipeline) CheckPath(path string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	resolved := p.Prep(path)
	if !p.IsOk() {
		return p
	}

	target := shell.ParseTarget(resolved)
	if target.Remote {
		p.command("Check remote path").
			SetConnection(p.targetConnection(target)).
			CmdBegin().CmdAdd("mkdir", "-p").FileAdd(target.Path).
			CmdEnd(p.ctx, " ", p.dryRun(true))
		return p
	}

	if p.dryRun(false) {
		p.log.Debug("check path", "path", resolved, "dry_run", true)
		return p
	}
	resolved = p.abs(resolved)
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		p.status.SetResult(status.DirectoryCheckError, status.Context{"Path": resolved, "Error": err.Error()})
	}
	return p
}

// PurifyDestination removes %DEST% entirely.
func (p *Pipeline) PurifyDestination() *Pipeline {
	return p.Delete("%DEST%", "Remove destination folder")
}

func (p *Pipeline) fileOp(comment string, cmd []string, paths ...string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	resolved := p.PrepList(paths)
	if !p.IsOk() {
		return p
	}
	sh := p.command(comment).CmdBegin().CmdAdd(cmd...)
	for _, path := range resolved {
		sh.FileAdd(path)
	}
	sh.CmdEnd(p.ctx, " ", p.dryRun(false)).ResultTo(p.status)
	return p
}
