// Package version reads and writes the build version file of a task.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultName is the version name used when no file exists.
const DefaultName = "alpha"

// Version is the persisted build identity.
type Version struct {
	Version string `json:"Version"`
	Build   int    `json:"Build"`
}

// Default returns {alpha, 0}.
func Default() Version {
	return Version{Version: DefaultName}
}

// String renders "name.build".
func (v Version) String() string {
	return v.Shift(0)
}

// Shift renders the version with the build number moved by shift.
func (v Version) Shift(shift int) string {
	return v.Version + "." + strconv.Itoa(v.Build+shift)
}

// Parse reads "name.build". It reports false when the text has no dot. A
// non-numeric build becomes 0.
func Parse(s string) (Version, bool) {
	name, build, found := strings.Cut(s, ".")
	if !found {
		return Version{}, false
	}
	if i := strings.IndexByte(build, '.'); i >= 0 {
		build = build[:i]
	}
	n, err := strconv.Atoi(build)
	if err != nil {
		n = 0
	}
	return Version{Version: name, Build: n}, true
}

// File is a version file on disk.
type File struct {
	Path string
}

// Read returns the stored version, or Default when the file is missing,
// unreadable or does not hold a usable document.
func (f File) Read() Version {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Default()
	}
	var v Version
	if err := json.Unmarshal(data, &v); err != nil || v.Version == "" {
		return Default()
	}
	return v
}

// Write persists v.
func (f File) Write(v Version) error {
	if f.Path == "" {
		return errors.New("version file path is empty")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode version: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}
	return nil
}

// Inc reads the file, adds one to Build and writes it back.
func (f File) Inc() (Version, error) {
	v := f.Read()
	v.Build++
	if err := f.Write(v); err != nil {
		return v, err
	}
	return v, nil
}
