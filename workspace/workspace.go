package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/duelmod/cardtext/consts"
)

// Stage is one of the workspace subdirectories an artifact lives in:
// extracted holds what came out of the game, changed holds hand-edited
// copies, modded holds build output.
type Stage string

const (
	StageExtracted Stage = "extracted"
	StageChanged   Stage = "changed"
	StageModded    Stage = "modded"
)

var allStages = []Stage{StageExtracted, StageChanged, StageModded}

type Workspace struct {
	root string
}

func Open(root string) (*Workspace, error) {
	for _, st := range allStages {
		if err := os.MkdirAll(filepath.Join(root, string(st)), consts.DefaultDirPermission); err != nil {
			return nil, fmt.Errorf("can't create workspace: %w", err)
		}
	}
	return &Workspace{root: root}, nil
}

func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) StageDir(st Stage) string {
	return filepath.Join(w.root, string(st))
}

func (w *Workspace) KeyFilePath() string {
	return filepath.Join(w.root, consts.KeyFileName)
}

func (w *Workspace) SnapshotPath() string {
	return filepath.Join(w.root, consts.SnapshotName)
}

func (w *Workspace) EncPath(st Stage, name string) string {
	return filepath.Join(w.StageDir(st), name+consts.EncryptedSuffix)
}

func (w *Workspace) DecPath(st Stage, name string) string {
	return filepath.Join(w.StageDir(st), name+consts.DecodedSuffix)
}

func (w *Workspace) JSONPath(st Stage, name string) string {
	return filepath.Join(w.StageDir(st), name+consts.JSONSuffix)
}

func (w *Workspace) BracedPath(st Stage) string {
	return filepath.Join(w.StageDir(st), consts.BracedJSONName)
}

// WriteFile writes through a unique temporary file and renames it over the
// target, so an interrupted write never leaves a half-written artifact.
func (w *Workspace) WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".")
	if err != nil {
		return fmt.Errorf("can't write %q: %w", path, err)
	}

	if err := tmp.Chmod(consts.DefaultFilePermission); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("can't write %q: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("can't write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("can't write %q: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("can't write %q: %w", path, err)
	}
	return nil
}

// ReadDecPreferring returns the decoded artifact from the first stage that
// has it. All stages missing is a MissingArtifactError.
func (w *Workspace) ReadDecPreferring(name string, stages ...Stage) ([]byte, Stage, error) {
	for _, st := range stages {
		data, err := os.ReadFile(w.DecPath(st, name))
		if err == nil {
			return data, st, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("can't read %q: %w", w.DecPath(st, name), err)
		}
	}
	return nil, "", &MissingArtifactError{Name: name, Path: w.DecPath(stages[len(stages)-1], name)}
}
