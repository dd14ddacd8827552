// Package paths locates the bundled and user shader directories.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDir     = "Boxer"
	shadersDir = "Shaders"
)

// Env abstracts the process environment so defaults can be tested.
type Env struct {
	Executable    func() (string, error)
	UserConfigDir func() (string, error)
	Getenv        func(string) string
}

// OSEnv returns an Env backed by the os package.
func OSEnv() Env {
	return Env{
		Executable:    os.Executable,
		UserConfigDir: os.UserConfigDir,
		Getenv:        os.Getenv,
	}
}

// Roots holds the resolved shader directories.
type Roots struct {
	System string   `json:"system" yaml:"system"`
	User   []string `json:"user" yaml:"user"`
}

// Primary returns the first user root, where new shaders are installed.
// It is empty if there are no user roots.
func (r Roots) Primary() string {
	if len(r.User) == 0 {
		return ""
	}
	return r.User[0]
}

// DefaultSystemRoot returns the Shaders directory next to the executable.
func DefaultSystemRoot(env Env) (string, error) {
	exe, err := env.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), shadersDir), nil
}

// DefaultUserRoots returns the user shader directories in search order:
// the per-user config directory, then $XDG_DATA_HOME when set.
func DefaultUserRoots(env Env) []string {
	var roots []string
	if dir, err := env.UserConfigDir(); err == nil && dir != "" {
		roots = append(roots, filepath.Join(dir, appDir, shadersDir))
	}
	if dir := env.Getenv("XDG_DATA_HOME"); dir != "" {
		roots = append(roots, filepath.Join(dir, appDir, shadersDir))
	}
	return Dedupe(roots)
}

// Resolve fills in defaults for any root that was not configured.
func Resolve(env Env, systemRoot string, userRoots []string) (Roots, error) {
	r := Roots{System: systemRoot, User: Dedupe(userRoots)}

	if r.System == "" {
		root, err := DefaultSystemRoot(env)
		if err != nil {
			return Roots{}, err
		}
		r.System = root
	}
	if len(r.User) == 0 {
		r.User = DefaultUserRoots(env)
	}

	return r, nil
}

// Dedupe cleans the paths and drops empty and repeated entries, keeping
// the first occurrence.
func Dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
