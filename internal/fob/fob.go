// Package fob loads named groups of sensitive parameters (registry hosts,
// logins, password files) that live outside the project tree.
//
// A fob file is a JSON document, comments and trailing commas allowed:
//
//	{
//	  // production registry
//	  "registry": {"Host": "registry.example.org", "Login": "ci", "PasswordFile": "/run/secrets/registry"},
//	}
package fob

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/johnthesmith/cicd/internal/params"
)

// ErrGroupNotFound is returned when a group is absent or empty.
var ErrGroupNotFound = errors.New("fob group not found")

// Store resolves a group name to its parameters.
type Store interface {
	Load(name string) (map[string]params.Value, error)
}

// FileStore reads groups from a fob file on every Load.
type FileStore struct {
	Path string
}

var _ Store = FileStore{}

// Load implements Store. The returned map is never nil.
func (f FileStore) Load(name string) (map[string]params.Value, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return map[string]params.Value{}, fmt.Errorf("read fob file: %w", err)
	}

	var doc map[string]map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return map[string]params.Value{}, fmt.Errorf("parse fob file %s: %w", f.Path, err)
	}
	return Groups(doc).Load(name)
}

// Groups is an in-memory Store.
type Groups map[string]map[string]any

var _ Store = Groups{}

// Load implements Store.
func (g Groups) Load(name string) (map[string]params.Value, error) {
	out := map[string]params.Value{}
	group, ok := g[name]
	if !ok || len(group) == 0 {
		return out, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
	}
	for k, v := range group {
		out[k] = params.Of(v)
	}
	return out, nil
}
