package workspace

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelmod/cardtext/consts"
)

func TestJSONListRoundTrip(t *testing.T) {
	w := openTestWorkspace(t)
	path := w.JSONPath(StageExtracted, consts.ArtifactName)

	records := []string{
		"Blue-Eyes White Dragon",
		"ブラック・マジシャン",
		"Has <b>markup</b> & {braces}",
		"",
	}
	require.NoError(t, w.WriteJSONList(path, records))

	got, err := w.ReadJSONList(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteJSONListKeepsMarkupReadable(t *testing.T) {
	w := openTestWorkspace(t)
	path := w.JSONPath(StageExtracted, consts.ArtifactDesc)

	require.NoError(t, w.WriteJSONList(path, []string{"<effect> & more"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<effect> & more")
	assert.NotContains(t, string(raw), `\u003c`)
}

func TestReadJSONListErrors(t *testing.T) {
	w := openTestWorkspace(t)
	path := w.JSONPath(StageChanged, consts.ArtifactName)

	_, err := w.ReadJSONList(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.WriteFile(path, []byte("{not an array")))
	_, err = w.ReadJSONList(path)
	assert.Error(t, err)

	require.NoError(t, w.WriteFile(path, []byte(`{"a": 1}`)))
	_, err = w.ReadJSONList(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array")
}

func TestReadJSONListPreferring(t *testing.T) {
	w := openTestWorkspace(t)

	require.NoError(t, w.WriteJSONList(w.JSONPath(StageExtracted, consts.ArtifactName), []string{"original"}))
	require.NoError(t, w.WriteJSONList(w.JSONPath(StageChanged, consts.ArtifactName), []string{"edited"}))

	records, st, err := w.ReadJSONListPreferring(consts.ArtifactName, StageChanged, StageExtracted)
	require.NoError(t, err)
	assert.Equal(t, StageChanged, st)
	assert.Equal(t, []string{"edited"}, records)

	_, _, err = w.ReadJSONListPreferring(consts.ArtifactDesc, StageChanged, StageExtracted)
	assert.True(t, IsMissingArtifact(err))
}

func TestReadBracedPreferringOptional(t *testing.T) {
	w := openTestWorkspace(t)

	records, st, err := w.ReadBracedPreferring(StageChanged, StageExtracted)
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Equal(t, Stage(""), st)

	require.NoError(t, w.WriteJSONList(w.BracedPath(StageExtracted), []string{"{Effect}"}))

	records, st, err = w.ReadBracedPreferring(StageChanged, StageExtracted)
	require.NoError(t, err)
	assert.Equal(t, StageExtracted, st)
	assert.Equal(t, []string{"{Effect}"}, records)
}
