package engine

import (
	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/params"
	"github.com/johnthesmith/cicd/internal/pipeline"
	"github.com/johnthesmith/cicd/internal/status"
)

type handler func(p *pipeline.Pipeline, s *config.Step)

// handlers maps configured operation names onto pipeline operations. The
// key set matches config.Ops.
var handlers = map[string]handler{
	"info":        func(p *pipeline.Pipeline, s *config.Step) { p.Info(s.Text) },
	"dump_params": func(p *pipeline.Pipeline, _ *config.Step) { p.DumpParams() },
	"set_mode": func(p *pipeline.Pipeline, s *config.Step) {
		// validated by the config layer
		m, _ := mode.Parse(s.Mode)
		p.SetMode(m)
	},
	"add_params": func(p *pipeline.Pipeline, s *config.Step) {
		values := make(map[string]params.Value, len(s.Params))
		for key, raw := range s.Params {
			values[key] = params.Of(raw)
		}
		p.AddParams(values)
	},
	"activate_fob":  func(p *pipeline.Pipeline, s *config.Step) { p.ActivateFob(s.Name) },
	"change_folder": func(p *pipeline.Pipeline, s *config.Step) { p.ChangeFolder(s.Path) },

	"git_clone": func(p *pipeline.Pipeline, s *config.Step) {
		p.GitClone(s.Source, s.Dest, s.Branch, s.Depth, s.Comment)
	},
	"git_purge": func(p *pipeline.Pipeline, s *config.Step) { p.GitPurge(s.Source, s.Comment) },
	"git_pure":  func(p *pipeline.Pipeline, s *config.Step) { p.GitPure(s.Source, s.Comment) },
	"git_pull":  func(p *pipeline.Pipeline, s *config.Step) { p.GitPull(s.Dest, s.Comment) },
	"git_add":   func(p *pipeline.Pipeline, s *config.Step) { p.GitAdd(s.Source, s.Comment) },
	"git_commit": func(p *pipeline.Pipeline, s *config.Step) {
		p.GitCommit(s.Source, s.Message, s.Comment)
	},
	"git_push": func(p *pipeline.Pipeline, s *config.Step) { p.GitPush(s.Source, s.Comment) },
	"git_use": func(p *pipeline.Pipeline, s *config.Step) {
		p.GitUse(s.Source, s.Dest, s.Branch, s.Depth, s.Comment)
	},
	"git_sync": func(p *pipeline.Pipeline, s *config.Step) {
		p.GitSync(s.Source, s.Dest, s.Excludes, s.Branch, s.Comment)
	},
	"git_upload": func(p *pipeline.Pipeline, s *config.Step) {
		p.GitUpload(s.Source, s.Message, s.Comment)
	},

	"rights": func(p *pipeline.Pipeline, s *config.Step) {
		p.Rights(s.Paths, s.Rights, s.Recursive, s.Comment)
	},
	"sync": func(p *pipeline.Pipeline, s *config.Step) {
		p.Sync(s.Source, s.Dest, s.Excludes, s.Delete, s.Comment)
	},
	"delete":             func(p *pipeline.Pipeline, s *config.Step) { p.Delete(s.Path, s.Comment) },
	"move":               func(p *pipeline.Pipeline, s *config.Step) { p.Move(s.Source, s.Dest, s.Comment) },
	"copy":               func(p *pipeline.Pipeline, s *config.Step) { p.Copy(s.Source, s.Dest, s.Comment) },
	"check_path":         func(p *pipeline.Pipeline, s *config.Step) { p.CheckPath(s.Path) },
	"purify_destination": func(p *pipeline.Pipeline, _ *config.Step) { p.PurifyDestination() },
	"replace": func(p *pipeline.Pipeline, s *config.Step) {
		p.Replace(s.Path, s.Includes, s.Excludes, s.ExcludeKeys)
	},

	"docker_login":        func(p *pipeline.Pipeline, _ *config.Step) { p.DockerLogin() },
	"docker_image_build":  func(p *pipeline.Pipeline, _ *config.Step) { p.DockerImageBuild() },
	"docker_image_delete": func(p *pipeline.Pipeline, s *config.Step) { p.DockerImageDelete(s.Image) },
	"docker_image_export": func(p *pipeline.Pipeline, s *config.Step) { p.DockerImageExport(s.Folder, s.Latest) },
	"image_run_line":      func(p *pipeline.Pipeline, _ *config.Step) { p.ImageRunLine() },
	"image_deploy":        func(p *pipeline.Pipeline, _ *config.Step) { p.ImageDeploy() },
	"image_purge": func(p *pipeline.Pipeline, s *config.Step) {
		depth := s.Depth
		if depth == 0 {
			depth = defaultPurgeDepth
		}
		p.ImagePurge(depth, s.Remote)
	},
	"image_tag":    func(p *pipeline.Pipeline, s *config.Step) { p.ImageTag(s.Latest) },
	"image_public": func(p *pipeline.Pipeline, s *config.Step) { p.ImagePublic(s.Latest) },
	"version_inc":  func(p *pipeline.Pipeline, _ *config.Step) { p.VersionInc() },

	"shell": func(p *pipeline.Pipeline, s *config.Step) {
		if s.Override != nil {
			p.Shell(s.Lines, s.Remote, s.Comment, status.Code(*s.Override))
			return
		}
		p.Shell(s.Lines, s.Remote, s.Comment)
	},
}

// defaultPurgeDepth is the number of builds image_purge keeps.
const defaultPurgeDepth = 5
