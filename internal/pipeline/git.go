package pipeline

import (
	"strconv"

	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
)

// GitClone clones source into dest. A positive depth makes a shallow clone
// and a non-empty branch selects the branch to check out.
func (p *Pipeline) GitClone(source, dest, branch string, depth int, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	src, dst, br := p.Prep(source), p.Prep(dest), p.Prep(branch)
	if !p.IsOk() {
		return p
	}
	if comment == "" {
		comment = "Git clone"
	}

	sh := p.command(comment).CmdBegin().CmdAdd("git", "clone")
	if depth > 0 {
		sh.CmdAdd("--depth", strconv.Itoa(depth))
	}
	if br != "" {
		sh.FlagAdd("-b", []string{br})
	}
	sh.FileAdd(src).FileAdd(dst).CmdEnd(p.ctx, " ", p.dryRun(false)).ResultTo(p.status)
	return p
}

// GitPurge strips repository metadata from a checkout.
func (p *Pipeline) GitPurge(source, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	if comment == "" {
		comment = "Git purge"
	}
	for _, name := range gitPurgeList {
		p.Delete(source+"/"+name, comment)
	}
	return p
}

// GitPure discards local changes and untracked files in source.
func (p *Pipeline) GitPure(source, comment string) *Pipeline {
	return p.gitIn(source, comment, "git reset --hard", "git clean -fdx")
}

// GitPull pulls the current branch of dest.
func (p *Pipeline) GitPull(dest, comment string) *Pipeline {
	return p.gitIn(dest, comment, "git pull")
}

// GitAdd stages every change in source.
func (p *Pipeline) GitAdd(source, comment string) *Pipeline {
	return p.gitIn(source, comment, "git add -A")
}

// GitCommit commits staged changes. Its outcome is only logged: an empty
// commit must not fail the run.
func (p *Pipeline) GitCommit(source, message, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	msg := p.Prep(message)
	return p.InFolder(source, func(p *Pipeline) {
		sh := p.command(comment).CmdBegin().
			CmdAdd("git", "commit").
			FlagAdd("-m", []string{msg}).
			CmdEnd(p.ctx, " ", p.dryRun(false))
		if !sh.IsOk() {
			p.log.Warn("git commit skipped", "folder", p.workDir, "error", sh.Err().Error())
		}
	})
}

// GitPush pushes the current branch of source.
func (p *Pipeline) GitPush(source, comment string) *Pipeline {
	return p.gitIn(source, comment, "git push")
}

// GitUse brings dest to the head of the repository: an existing working
// copy is cleaned and pulled, anything else is cloned fresh.
func (p *Pipeline) GitUse(source, dest, branch string, depth int, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	dst := p.Prep(dest)
	if !p.IsOk() {
		return p
	}

	repo, err := git.PlainOpen(p.abs(dst))
	if err != nil {
		p.log.Debug("no working copy, cloning", "dest", dst, "reason", err.Error())
		return p.GitClone(source, dest, branch, depth, comment)
	}
	if head, err := repo.Head(); err == nil {
		p.log.Info("working copy found", "dest", dst, "head", head.Hash().String(), "ref", head.Name().Short())
	}
	return p.GitPure(dest, comment).GitPull(dest, comment)
}

// GitSync clones source into a fresh temporary folder, strips the git
// metadata and syncs the result into dest.
func (p *Pipeline) GitSync(source, dest string, excludes []string, branch, comment string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	tmp := "%TMP%/" + uuid.NewString()
	return p.
		GitClone(source, tmp, branch, 1, comment).
		GitPurge(tmp, comment).
		Sync(tmp, dest, excludes, true, "Copy sources to destination").
		Delete(tmp, "Remove temporary checkout")
}

// GitUpload commits every change in source and pushes it.
func (p *Pipeline) GitUpload(source, message, comment string) *Pipeline {
	return p.
		GitAdd(source, comment).
		GitCommit(source, message, comment).
		GitPull(source, comment).
		GitPush(source, comment)
}

func (p *Pipeline) gitIn(folder, comment string, lines ...string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	return p.InFolder(folder, func(p *Pipeline) {
		p.command(comment).CmdBegin().CmdAdd(lines...).CmdEnd(p.ctx, " && ", p.dryRun(false)).ResultTo(p.status)
	})
}
