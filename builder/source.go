package builder

import (
	"os"
	"path/filepath"

	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/workspace"
)

// Source hands out the game's encrypted artifacts by name.
type Source interface {
	Artifact(name string) ([]byte, error)
}

// DirSource reads artifacts from a directory of <name>.bytes files, the
// layout of an unpacked asset bundle.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Artifact(name string) ([]byte, error) {
	path := filepath.Join(s.dir, name+consts.EncryptedSuffix)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &workspace.MissingArtifactError{Name: name, Path: path}
	}
	return data, err
}
