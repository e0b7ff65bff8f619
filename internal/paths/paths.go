// Package paths maps game families to their on-disk locations. The saves
// directory of a family doubles as that family's repository root.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// GameFamily identifies one supported game line.
type GameFamily struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	DirName     string `json:"dir_name"`
}

// Built-in families. Other catches saves from unrecognized installs.
var (
	CataclysmDDA = GameFamily{Name: "dda", DisplayName: "Cataclysm: Dark Days Ahead", DirName: "dda"}
	CataclysmBN  = GameFamily{Name: "bn", DisplayName: "Cataclysm: Bright Nights", DirName: "bn"}
	Other        = GameFamily{Name: "other", DisplayName: "Other", DirName: "other"}
)

// DefaultFamilies returns the built-in game family registry.
func DefaultFamilies() []GameFamily {
	return []GameFamily{CataclysmDDA, CataclysmBN, Other}
}

// Registry is an enumerable set of game families.
type Registry struct {
	families []GameFamily
}

// NewRegistry creates a registry. With no arguments the built-in families
// are used.
func NewRegistry(families ...GameFamily) *Registry {
	if len(families) == 0 {
		families = DefaultFamilies()
	}
	return &Registry{families: families}
}

// All returns every registered family.
func (r *Registry) All() []GameFamily {
	out := make([]GameFamily, len(r.families))
	copy(out, r.families)
	return out
}

// ByName finds a family by name. Unknown names resolve to Other, matching
// the launcher's lenient lookup.
func (r *Registry) ByName(name string) GameFamily {
	for _, family := range r.families {
		if family.Name == name {
			return family
		}
	}
	return Other
}

// Service resolves directories under one base data directory.
type Service struct {
	baseDir string
}

// NewService creates a path service rooted at baseDir.
func NewService(baseDir string) *Service {
	return &Service{baseDir: baseDir}
}

// BaseDir returns the root data directory.
func (s *Service) BaseDir() string { return s.baseDir }

// SavesDir returns the saves directory for a family. This same directory
// is the family's repository root once timelines are initialized.
func (s *Service) SavesDir(family GameFamily) string {
	return filepath.Join(s.baseDir, family.DirName, "saves")
}

// RepoDir returns the repository root for a family. The saves directory
// and the repository root are the same location.
func (s *Service) RepoDir(family GameFamily) string {
	return s.SavesDir(family)
}

// EnsureSavesDir creates the saves directory if missing.
func (s *Service) EnsureSavesDir(family GameFamily) (string, error) {
	dir := s.SavesDir(family)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create saves dir for %s: %w", family.Name, err)
	}
	return dir, nil
}
