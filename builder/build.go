package builder

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/duelmod/cardtext/brace"
	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/crypt"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/metric"
	"github.com/duelmod/cardtext/metric/stopwatch"
	"github.com/duelmod/cardtext/part"
	"github.com/duelmod/cardtext/textblob"
	"github.com/duelmod/cardtext/util"
	"github.com/duelmod/cardtext/workspace"
)

type Options struct {
	// Force continues a build whose braced edits changed the number of
	// top-level effect pairs in some records.
	Force bool
}

type BuildResult struct {
	ID         string
	Key        uint64
	Records    int
	Mismatches []Mismatch
	Modded     []string
}

type descSource struct {
	records []string
	braced  bool
	stage   workspace.Stage
}

// Build folds edited workspace files back into game-ready artifacts under
// the modded stage. Descriptions come from the braced file when one is
// around, the effect tables are then rebuilt to follow the moved markers;
// otherwise edited plain text is merged and the tables pass through
// untouched.
func (b *Builder) Build(ctx context.Context, opts Options) (*BuildResult, error) {
	start := time.Now()
	id := ulid.MustNew(ulid.Now(), rand.Reader).String()
	sw := stopwatch.New()

	m := sw.Start("resolve_key")
	key, err := b.buildKey(ctx)
	m.Stop()
	if err != nil {
		return nil, err
	}

	m = sw.Start("read")
	names, _, err := b.ws.ReadJSONListPreferring(consts.ArtifactName,
		workspace.StageChanged, workspace.StageExtracted)
	if err != nil {
		return nil, err
	}
	src, err := b.readDescSource()
	m.Stop()
	if err != nil {
		return nil, err
	}

	descs := src.records
	var mismatches []Mismatch
	var newPidx, newParts []byte
	if src.braced {
		m = sw.Start("remap")
		descs, newPidx, newParts, mismatches, err = b.remapBraced(src.records, opts.Force)
		m.Stop()
		if err != nil {
			return nil, err
		}
	}

	if len(names) != len(descs) {
		return nil, fmt.Errorf("record count mismatch: %d names, %d descriptions", len(names), len(descs))
	}

	m = sw.Start("merge")
	nameBlob, nameOffs := textblob.Merge(names)
	descBlob, descOffs := textblob.Merge(descs)
	indx := textblob.InterleaveIndex(nameOffs, descOffs)
	m.Stop()

	built := []builtArtifact{
		{consts.ArtifactIndx, indx},
		{consts.ArtifactName, nameBlob},
		{consts.ArtifactDesc, descBlob},
	}
	if src.braced {
		built = append(built,
			builtArtifact{consts.ArtifactPidx, newPidx},
			builtArtifact{consts.ArtifactPart, newParts})
	}

	m = sw.Start("write")
	modded, err := b.writeModded(key, src.braced, built)
	m.Stop()
	if err != nil {
		return nil, err
	}

	sw.Export(metric.BuildStagesSeconds)

	logger.Info("build finished",
		zap.String("build_id", id),
		util.ZapHex("key", key),
		zap.Int("records", len(descs)),
		zap.String("desc_stage", string(src.stage)),
		zap.Bool("braced", src.braced),
		zap.Int("count_mismatches", len(mismatches)),
		zap.Strings("artifacts", modded),
		util.ZapFloat64WithPrec("took_s", time.Since(start).Seconds(), 2))

	return &BuildResult{
		ID:         id,
		Key:        key,
		Records:    len(descs),
		Mismatches: mismatches,
		Modded:     modded,
	}, nil
}

// readDescSource picks the description records to build from. Within a
// stage the braced file wins over the plain one, edited stages win over
// extracted.
func (b *Builder) readDescSource() (*descSource, error) {
	for _, st := range []workspace.Stage{workspace.StageChanged, workspace.StageExtracted} {
		records, err := b.ws.ReadJSONList(b.ws.BracedPath(st))
		if err == nil {
			return &descSource{records: records, braced: true, stage: st}, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}

		records, err = b.ws.ReadJSONList(b.ws.JSONPath(st, consts.ArtifactDesc))
		if err == nil {
			return &descSource{records: records, stage: st}, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, &workspace.MissingArtifactError{
		Name: consts.ArtifactDesc,
		Path: b.ws.JSONPath(workspace.StageExtracted, consts.ArtifactDesc),
	}
}

// remapBraced strips editor markers out of braced descriptions and rebuilds
// the effect tables around them. Markers the editor moved shift the matching
// spans, deleted markers leave the original span in place, so the rebuilt
// tables always keep the original span counts.
func (b *Builder) remapBraced(braced []string, force bool) (
	descs []string, pidx, parts []byte, mismatches []Mismatch, err error,
) {
	origIndx, err := b.artifact(consts.ArtifactIndx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	origDescBlob, err := b.artifact(consts.ArtifactDesc)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rawPidx, err := b.artifact(consts.ArtifactPidx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rawParts, err := b.artifact(consts.ArtifactPart)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	origDescs := textblob.Split(origIndx, origDescBlob, textblob.CombinedStride, textblob.PhaseDesc)
	entries := part.DecodePidx(rawPidx)
	ranges, err := part.DecodeParts(rawParts, entries)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if len(braced) != len(origDescs) {
		return nil, nil, nil, nil, fmt.Errorf(
			"description record count changed: %d braced records, %d in the originals", len(braced), len(origDescs))
	}

	descs = make([]string, len(braced))
	newRanges := make([][]part.Range, len(braced))
	for i, edited := range braced {
		var rs []part.Range
		if i < len(ranges) {
			rs = ranges[i]
		}

		orig := brace.Annotate(origDescs[i], rs)
		if want, got := brace.CountTopLevel(orig), brace.CountTopLevel(edited); want != got {
			mismatches = append(mismatches, Mismatch{Record: i, Want: want, Got: got})
		}

		descs[i] = brace.Strip(edited)
		newRanges[i] = brace.RemapRanges(rs, orig, edited)
	}

	if len(mismatches) > 0 {
		if !force {
			return nil, nil, nil, mismatches, &CountMismatchError{Mismatches: mismatches}
		}
		logger.Warn("effect pair counts changed, building anyway",
			zap.Int("records", len(mismatches)))
	}

	partBlob, pointers := part.EncodeParts(newRanges)
	newEntries := make([]part.Entry, len(newRanges))
	for i := range newEntries {
		newEntries[i].Ptr = pointers[i]
		if i < len(entries) {
			newEntries[i].Main = entries[i].Main
			newEntries[i].Sub = entries[i].Sub
		}
	}
	return descs, part.EncodePidx(newEntries), partBlob, mismatches, nil
}

type builtArtifact struct {
	name string
	data []byte
}

// writeModded lands every output artifact in the modded stage: rebuilt ones
// as decoded plus encoded pairs, the rest re-encoded from workspace copies
// or, failing that, copied raw from the source.
func (b *Builder) writeModded(key uint64, braced bool, built []builtArtifact) ([]string, error) {
	var modded []string
	for _, a := range built {
		if err := b.writeArtifact(a.name, a.data, key); err != nil {
			return nil, err
		}
		modded = append(modded, a.name)
	}

	passthrough := []string{consts.ArtifactProp, consts.ArtifactWordIndx, consts.ArtifactWordText}
	if !braced {
		passthrough = append([]string{consts.ArtifactPidx, consts.ArtifactPart}, passthrough...)
	}
	for _, name := range passthrough {
		shipped, err := b.passthrough(name, key)
		if err != nil {
			return nil, err
		}
		if shipped {
			modded = append(modded, name)
		}
	}
	return modded, nil
}

func (b *Builder) writeArtifact(name string, dec []byte, key uint64) error {
	if err := b.ws.WriteFile(b.ws.DecPath(workspace.StageModded, name), dec); err != nil {
		return err
	}
	enc, err := crypt.Encode(dec, key)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", name, err)
	}
	return b.ws.WriteFile(b.ws.EncPath(workspace.StageModded, name), enc)
}

// passthrough ships an artifact the build does not rewrite. A decoded
// workspace copy is re-encoded under the current key, otherwise the raw
// source file is copied as is. Reports whether anything was shipped.
func (b *Builder) passthrough(name string, key uint64) (bool, error) {
	dec, _, err := b.ws.ReadDecPreferring(name, workspace.StageChanged, workspace.StageExtracted)
	if err == nil {
		return true, b.writeArtifact(name, dec, key)
	}
	if !workspace.IsMissingArtifact(err) {
		return false, err
	}

	if b.src != nil {
		raw, srcErr := b.src.Artifact(name)
		if srcErr == nil {
			return true, b.ws.WriteFile(b.ws.EncPath(workspace.StageModded, name), raw)
		}
		if !workspace.IsMissingArtifact(srcErr) {
			return false, srcErr
		}
	}

	logger.Debug("artifact not present, skipping", zap.String("artifact", name))
	return false, nil
}
