package builder

import (
	"sync"

	"go.uber.org/zap"

	"github.com/duelmod/cardtext/cache"
	"github.com/duelmod/cardtext/disk"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/workspace"
)

// Builder runs the two halves of the modding pipeline over one workspace:
// Extract pulls the text database out of the game's encrypted artifacts,
// Build folds edited files back into game-ready ones. A Builder may be kept
// around between runs, decoded originals are cached.
type Builder struct {
	ws  *workspace.Workspace
	src Source

	arts *cache.Cache[[]byte]

	snapOnce sync.Once
	snap     map[string][]byte
}

// New creates a Builder. src may be nil when the workspace already holds
// extracted data and the caller only builds.
func New(ws *workspace.Workspace, src Source) *Builder {
	return &Builder{
		ws:   ws,
		src:  src,
		arts: cache.New[[]byte](),
	}
}

// artifact returns an original decoded artifact: from the session snapshot
// when one is present, otherwise from the extracted stage files.
func (b *Builder) artifact(name string) ([]byte, error) {
	return b.arts.GetWithError(name, func() ([]byte, int, error) {
		b.snapOnce.Do(b.loadSnapshot)

		if data, ok := b.snap[name]; ok {
			return data, len(data), nil
		}
		data, _, err := b.ws.ReadDecPreferring(name, workspace.StageExtracted)
		if err != nil {
			return nil, 0, err
		}
		return data, len(data), nil
	})
}

func (b *Builder) loadSnapshot() {
	store := disk.NewStore(b.ws.SnapshotPath())
	if !store.Exists() {
		return
	}

	snap, err := store.Load()
	if err != nil {
		logger.Warn("can't load snapshot, falling back to extracted files",
			zap.String("path", store.Path()),
			zap.Error(err))
		return
	}
	b.snap = snap
}

// Reset drops cached artifacts and the loaded snapshot, the next operation
// rereads the workspace.
func (b *Builder) Reset() {
	b.arts.Reset()
	b.snapOnce = sync.Once{}
	b.snap = nil
}
