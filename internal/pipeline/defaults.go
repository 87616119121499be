package pipeline

import "github.com/johnthesmith/cicd/internal/params"

// DefaultParams returns the layout every task starts from. Paths are
// relative to TASK_PATH and chain through each other, so overriding SOURCE
// or DEST moves everything below it.
func DefaultParams() map[string]params.Value {
	return map[string]params.Value{
		// shared sources
		"FILES":     params.String("%SOURCE%/files"),
		"TEMPLATES": params.String("%SOURCE%/templates"),

		// local sources
		"SOURCE":         params.String("%TASK_PATH%/deploy/source"),
		"IMAGE":          params.String("%SOURCE%/image"),
		"FILES_TASK":     params.String("%SOURCE%/files"),
		"SOURCE_PROJECT": params.String("%SOURCE%/project"),

		// local destinations
		"CACHE":              params.String("%TASK_PATH%/deploy/cache"),
		"CACHE_STABLE":       params.String("%CACHE%/stable"),
		"DEST":               params.String("%TASK_PATH%/deploy/dest"),
		"TMP":                params.String("%DEST%/tmp"),
		"BUILD":              params.String("%DEST%/image"),
		"IMAGES":             params.String("%DEST%/images"),
		"LOCAL_PROJECT":      params.String("%BUILD%/%REMOTE_PROJECT%"),
		"REMOTE_PROJECT_APP": params.String("%REMOTE_PROJECT%/app"),
		"VERSION_FILE":       params.String("%TASK_PATH%/version.json"),

		// remote destinations
		"REMOTE":        params.String("%REMOTE_USER%@%REMOTE_HOST%"),
		"REMOTE_IMAGES": params.String("/tmp/deployer/images"),

		"DeployMoment": params.String(""),
		// refreshed by ImageDeploy
		"IMAGE_FILE_CURRENT": params.String("UNDEFINED"),
	}
}

// gitPurgeList names the repository files removed by GitPurge.
var gitPurgeList = []string{".git", ".gitignore", "README.md", "push"}
