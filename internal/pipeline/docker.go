package pipeline

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/johnthesmith/cicd/internal/params"
	"github.com/johnthesmith/cicd/internal/shell"
	"github.com/johnthesmith/cicd/internal/status"
	"github.com/johnthesmith/cicd/internal/version"
)

// Output markers docker build prints in front of the image id, classic
// builder first.
var imageIDMarkers = []string{"Successfully built", "writing image"}

var columnSplit = regexp.MustCompile(` {2,}`)

// DockerLogin logs into the registry of the active fob using its Host, Login
// and PasswordFile parameters.
func (p *Pipeline) DockerLogin() *Pipeline {
	if !p.IsOk() {
		return p
	}
	line := p.Prep("docker login %Host% --username %Login% --password-stdin < %PasswordFile%")
	if !p.IsOk() {
		return p
	}
	p.command("Docker login").Cmd(p.ctx, line, p.dryRun(false)).ResultTo(p.status)
	return p
}

// DockerImageBuild builds %BUILD%/Dockerfile tagged with the next build
// number. On a real build the image id is taken from the output and the
// version file is incremented.
func (p *Pipeline) DockerImageBuild() *Pipeline {
	if !p.IsOk() {
		return p
	}
	buildDir := p.Prep("%BUILD%")
	if !p.IsOk() {
		return p
	}
	next := p.ImageBuild(1)
	p.log.Info("image build", "current", p.VersionString(0), "next", p.VersionString(1))

	dryRun := p.dryRun(false)
	sh := p.command("Build the docker image").SetDir(p.abs(buildDir)).CmdBegin().
		CmdAdd("docker", "build").
		FlagAdd("-t", []string{next}).
		FlagAdd("-f", []string{buildDir + "/Dockerfile"}).
		CmdAdd(".").
		CmdEnd(p.ctx, " ", dryRun).
		ResultTo(p.status)

	if !p.IsOk() || dryRun {
		return p
	}
	p.imageID = imageID(sh)
	if p.imageID == "" {
		p.status.SetResult(status.IDImageNotFound, status.Context{"Image": next})
		return p
	}
	p.log.Info("image built", "image", next, "id", p.imageID)
	return p.VersionInc()
}

// ImageID returns the id of the image built by the last DockerImageBuild.
func (p *Pipeline) ImageID() string {
	return p.imageID
}

func imageID(sh *shell.Shell) string {
	for _, marker := range imageIDMarkers {
		if fields := strings.Fields(sh.LineAfter(marker)); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// DockerImageDelete removes image, the current build when empty.
func (p *Pipeline) DockerImageDelete(image string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	if image == "" {
		image = p.ImageBuild(0)
	}
	ref := p.Prep(image)
	if !p.IsOk() {
		return p
	}
	p.command("Delete docker image").CmdBegin().
		CmdAdd("docker", "rmi", "-f").FileAdd(ref).
		CmdEnd(p.ctx, " ", p.dryRun(false)).
		ResultTo(p.status)
	return p
}

// DockerImageExport saves the current image into folder, %IMAGES% when
// empty.
func (p *Pipeline) DockerImageExport(folder string, latest bool) *Pipeline {
	if !p.IsOk() {
		return p
	}
	if folder == "" {
		folder = "%IMAGES%"
	}
	file := p.Prep(folder) + "/" + p.ImageFile(0, latest)
	if !p.IsOk() {
		return p
	}
	p.CheckPath(filepath.Dir(file))
	if !p.IsOk() {
		return p
	}
	p.command("Export docker image").CmdBegin().
		CmdAdd("docker", "save").
		FlagAdd("-o", []string{file}).
		FileAdd(p.ImageBuild(0)).
		CmdEnd(p.ctx, " ", p.dryRun(false)).
		ResultTo(p.status)
	return p
}

// ImageRunCmd returns the docker run line of the current image with the
// ContainerPorts, HostFolder:DockerFolder and RemoteCapabilities
// parameters applied.
func (p *Pipeline) ImageRunCmd() string {
	sh := p.exec.Shell().CmdBegin().CmdAdd("docker", "run", "-itd", "--rm")
	sh.FlagAdd("-p", p.PrepList(p.params.GetList("ContainerPorts", nil)))

	host := p.Prep(p.params.GetParam("HostFolder", ""))
	docker := p.Prep(p.params.GetParam("DockerFolder", ""))
	if host != "" && docker != "" {
		sh.FlagAdd("-v", []string{host + ":" + docker})
	}

	sh.FlagAdd("--cap-add", p.PrepList(p.params.GetList("RemoteCapabilities", nil)))
	sh.FileAdd(p.ImageBuild(0))
	return strings.Join(sh.Tokens(), " ")
}

// ImageRunLine logs the run line of the current image.
func (p *Pipeline) ImageRunLine() *Pipeline {
	if !p.IsOk() {
		return p
	}
	p.log.Info("image run line", "cmd", p.ImageRunCmd())
	return p
}

// ImageDeploy ships the exported image to the remote host, loads it, stops
// the running container and starts the new one. The run line is saved to
// %DEST%/container_run.sh.
func (p *Pipeline) ImageDeploy() *Pipeline {
	if !p.IsOk() {
		return p
	}
	run := p.ImageRunCmd()

	p.
		SetParam("IMAGE_FILE_CURRENT", params.String(p.ImageFile(0, false))).
		Sync("%IMAGES%/%IMAGE_FILE_CURRENT%", "%REMOTE%:%REMOTE_IMAGES%/", nil, false, "Move the image to remote host").
		Shell([]string{`docker load --input "%REMOTE_IMAGES%/%IMAGE_FILE_CURRENT%"`}, true, "Import the container on remote system").
		Shell([]string{"rm %REMOTE_IMAGES%/%IMAGE_FILE_CURRENT%"}, true, "Remove docker file with image").
		Shell([]string{`docker stop $(docker ps | grep %ImageName% | awk '{print $1}')`}, true, "Stop docker container on remote", status.OK).
		Shell([]string{run}, true, "Run new container on remote")
	if !p.IsOk() {
		return p
	}

	file := p.abs(p.Prep("%DEST%/container_run.sh"))
	if p.dryRun(false) {
		p.log.Info("docker run command", "file", file, "cmd", run, "dry_run", true)
		return p
	}
	if err := os.WriteFile(file, []byte(run), 0o755); err != nil {
		p.status.SetResult(status.DirectoryCheckError, status.Context{"Path": file, "Error": err.Error()})
		return p
	}
	p.log.Info("docker run command saved", "file", file)
	return p
}

// ImagePurge removes builds of the current version name that are at least
// depth builds older than the current one, locally or on the remote host.
func (p *Pipeline) ImagePurge(depth int, remote bool) *Pipeline {
	if !p.IsOk() {
		return p
	}
	name := p.Prep(p.params.GetParam("ImageName", ""))
	if !p.IsOk() {
		return p
	}
	current := p.VersionRead()

	var conn *shell.Connection
	if remote {
		if conn = p.connection(); conn == nil {
			return p
		}
	}

	list := p.command("List docker images").SetConnection(conn).CmdBegin().
		CmdAdd("docker", "images").FileAdd(name).
		CmdEnd(p.ctx, " ", p.dryRun(remote))
	if !list.IsOk() {
		p.log.Warn("docker images failed", "error", list.Err().Error())
		return p
	}

	for _, line := range list.Lines() {
		cols := columnSplit.Split(line, -1)
		if len(cols) <= 2 || cols[0] != name {
			continue
		}
		v, ok := version.Parse(cols[1])
		if !ok || v.Version != current.Version || v.Build > current.Build-depth {
			continue
		}
		p.command("Purge docker image").SetConnection(conn).CmdBegin().
			CmdAdd("docker", "rmi", "-f").FileAdd(p.ImageName(v)).
			CmdEnd(p.ctx, " ", p.dryRun(remote))
	}
	return p
}

// ImageTag tags the current (or latest) image for the registry of the
// active fob.
func (p *Pipeline) ImageTag(latest bool) *Pipeline {
	if !p.IsOk() {
		return p
	}
	image := p.imageRef(latest)
	registry := p.Prep("%Host%/" + image)
	if !p.IsOk() {
		return p
	}
	p.command("Image tagging").CmdBegin().
		CmdAdd("docker", "tag").FileAdd(image).FileAdd(registry).
		CmdEnd(p.ctx, " ", p.dryRun(false)).
		ResultTo(p.status)
	return p
}

// ImagePublic pushes the registry tag made by ImageTag, or the bare image
// when no registry Host is configured.
func (p *Pipeline) ImagePublic(latest bool) *Pipeline {
	if !p.IsOk() {
		return p
	}
	ref := p.imageRef(latest)
	if host := p.Prep(p.params.GetParam("Host", "")); host != "" {
		ref = host + "/" + ref
	}
	if !p.IsOk() {
		return p
	}
	p.command("Image publication").CmdBegin().
		CmdAdd("docker", "push").FileAdd(ref).
		CmdEnd(p.ctx, " ", p.dryRun(false)).
		ResultTo(p.status)
	return p
}

func (p *Pipeline) imageRef(latest bool) string {
	if latest {
		return p.ImageLatest()
	}
	return p.ImageBuild(0)
}
