package discovery

import (
	"os"
	"os/exec"
	"path/filepath"

	"dtp/internal/domain"
)

// Resolved is an environment spec with its paths checked on disk
type Resolved struct {
	Spec         domain.EnvironmentSpec
	HarnessPath  string
	TargetPath   string
	BinaryFound  bool
	HarnessFound bool
	TargetFound  bool
}

// Missing reports whether anything needed to start the harness is absent
func (r Resolved) Missing() bool {
	return !r.BinaryFound || !r.HarnessFound || !r.TargetFound
}

// Resolver locates each environment's binary, harness and target
type Resolver struct {
	lookPath func(string) (string, error)
}

// NewResolver creates a new Resolver
func NewResolver() *Resolver {
	return &Resolver{lookPath: exec.LookPath}
}

// Resolve checks every spec. Relative harness and target paths are taken
// from the spec's working directory, the binary from PATH.
func (r *Resolver) Resolve(specs []domain.EnvironmentSpec) []Resolved {
	resolved := make([]Resolved, 0, len(specs))
	for _, spec := range specs {
		res := Resolved{
			Spec:        spec,
			HarnessPath: join(spec.Dir, spec.Harness),
			TargetPath:  join(spec.Dir, spec.Target),
		}
		_, err := r.lookPath(spec.Binary)
		res.BinaryFound = err == nil
		res.HarnessFound = exists(res.HarnessPath)
		// Harnesses that take no target are fine without one
		res.TargetFound = spec.Target == "" || exists(res.TargetPath)
		resolved = append(resolved, res)
	}
	return resolved
}

func join(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
