package builder

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/crypt"
	"github.com/duelmod/cardtext/disk"
	"github.com/duelmod/cardtext/workspace"
)

func TestExtract(t *testing.T) {
	f := newFixture(t)

	res := f.extract()
	require.Equal(t, uint64(testKey), res.Key)
	require.Equal(t, 3, res.Records)
	require.Equal(t, 2, res.Words)
	require.Equal(t, append(append([]string{}, requiredArtifacts...), optionalArtifacts...), res.Decoded)

	for _, name := range res.Decoded {
		_, _, err := f.ws.ReadDecPreferring(name, workspace.StageExtracted)
		require.NoError(t, err, name)
	}

	names, err := f.ws.ReadJSONList(f.ws.JSONPath(workspace.StageExtracted, consts.ArtifactName))
	require.NoError(t, err)
	require.Equal(t, f.names, names)

	descs, err := f.ws.ReadJSONList(f.ws.JSONPath(workspace.StageExtracted, consts.ArtifactDesc))
	require.NoError(t, err)
	require.Equal(t, f.descs, descs)

	braced, err := f.ws.ReadJSONList(f.ws.BracedPath(workspace.StageExtracted))
	require.NoError(t, err)
	require.Equal(t, []string{"Deal {10} damage.", "Draw {2 cards}.", ""}, braced)

	words, err := f.ws.ReadJSONList(f.ws.JSONPath(workspace.StageExtracted, consts.ArtifactWordText))
	require.NoError(t, err)
	require.Equal(t, []string{"dragon", "mage"}, words)

	require.True(t, disk.NewStore(f.ws.SnapshotPath()).Exists())

	key, ok := crypt.ReadKeyFile(f.ws.KeyFilePath())
	require.True(t, ok)
	require.Equal(t, uint64(testKey), key)
}

func TestExtractWithoutOptionalArtifacts(t *testing.T) {
	f := newFixture(t)
	for _, name := range optionalArtifacts {
		f.removeArtifact(name)
	}

	res := f.extract()
	require.Equal(t, 3, res.Records)
	require.Equal(t, 0, res.Words)
	require.Equal(t, requiredArtifacts, res.Decoded)

	_, err := os.Stat(f.ws.JSONPath(workspace.StageExtracted, consts.ArtifactWordText))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(f.ws.DecPath(workspace.StageExtracted, consts.ArtifactProp))
	require.True(t, os.IsNotExist(err))
}

func TestExtractMissingRequiredArtifact(t *testing.T) {
	f := newFixture(t)
	f.removeArtifact(consts.ArtifactDesc)

	_, err := f.builder().Extract(context.Background())
	require.True(t, workspace.IsMissingArtifact(err))
	require.ErrorContains(t, err, consts.ArtifactDesc)
}

func TestExtractUsesKeyFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, crypt.WriteKeyFile(f.ws.KeyFilePath(), testKey))

	before := crypt.Attempts()
	res := f.extract()
	require.Equal(t, uint64(testKey), res.Key)
	require.Equal(t, before, crypt.Attempts())
}

func TestExtractRejectsStaleKeyFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, crypt.WriteKeyFile(f.ws.KeyFilePath(), 0xBAD1DEA))

	res := f.extract()
	require.Equal(t, uint64(testKey), res.Key)

	key, ok := crypt.ReadKeyFile(f.ws.KeyFilePath())
	require.True(t, ok)
	require.Equal(t, uint64(testKey), key)
}

func TestExtractCancelled(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.builder().Extract(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
