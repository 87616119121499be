package pipeline

import (
	"strings"

	"github.com/johnthesmith/cicd/internal/status"
	"github.com/johnthesmith/cicd/internal/version"
)

func (p *Pipeline) versionFile() version.File {
	return version.File{Path: p.abs(p.Prep("%VERSION_FILE%"))}
}

// VersionRead returns the version stored in %VERSION_FILE%.
func (p *Pipeline) VersionRead() version.Version {
	return p.versionFile().Read()
}

// VersionWrite stores v in %VERSION_FILE%. Nothing is written in test mode.
func (p *Pipeline) VersionWrite(v version.Version) *Pipeline {
	if !p.IsOk() {
		return p
	}
	f := p.versionFile()
	if p.dryRun(false) {
		p.log.Info("version write", "file", f.Path, "version", v.String(), "dry_run", true)
		return p
	}
	if err := f.Write(v); err != nil {
		p.status.SetResult(status.VersionError, status.Context{"File": f.Path, "Error": err.Error()})
	}
	return p
}

// VersionInc adds one to the stored build number. Nothing is written in test
// mode.
func (p *Pipeline) VersionInc() *Pipeline {
	if !p.IsOk() {
		return p
	}
	f := p.versionFile()
	if p.dryRun(false) {
		p.log.Info("version increment", "file", f.Path, "next", f.Read().Shift(1), "dry_run", true)
		return p
	}
	v, err := f.Inc()
	if err != nil {
		p.status.SetResult(status.VersionError, status.Context{"File": f.Path, "Error": err.Error()})
		return p
	}
	p.log.Info("version incremented", "version", v.String())
	return p
}

// VersionString renders the stored version with the build moved by shift.
func (p *Pipeline) VersionString(shift int) string {
	return p.VersionRead().Shift(shift)
}

// ImageBuild returns ImageName:version for the stored version moved by
// shift.
func (p *Pipeline) ImageBuild(shift int) string {
	return p.imageName() + ":" + p.VersionString(shift)
}

// ImageName returns ImageName:version for v.
func (p *Pipeline) ImageName(v version.Version) string {
	return p.imageName() + ":" + v.String()
}

// ImageLatest returns ImageName:latest.
func (p *Pipeline) ImageLatest() string {
	return p.imageName() + ":latest"
}

// ImageFile returns the tar file name used to export the image.
func (p *Pipeline) ImageFile(shift int, latest bool) string {
	image := p.ImageBuild(shift)
	if latest {
		image = p.ImageLatest()
	}
	return strings.ReplaceAll(image, "/", "_") + ".tar"
}

func (p *Pipeline) imageName() string {
	return p.Prep(p.params.GetParam("ImageName", ""))
}
