package builder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/duelmod/cardtext/brace"
	"github.com/duelmod/cardtext/conf"
	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/crypt"
	"github.com/duelmod/cardtext/disk"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/metric"
	"github.com/duelmod/cardtext/metric/stopwatch"
	"github.com/duelmod/cardtext/part"
	"github.com/duelmod/cardtext/textblob"
	"github.com/duelmod/cardtext/util"
	"github.com/duelmod/cardtext/workspace"
)

// requiredArtifacts make up the card text database proper, extract fails
// without them. The rest travels through the pipeline opaquely and may be
// absent in stripped dumps.
var requiredArtifacts = []string{
	consts.ArtifactIndx,
	consts.ArtifactName,
	consts.ArtifactDesc,
	consts.ArtifactPidx,
	consts.ArtifactPart,
}

var optionalArtifacts = []string{
	consts.ArtifactProp,
	consts.ArtifactWordIndx,
	consts.ArtifactWordText,
}

type ExtractResult struct {
	Key     uint64
	Records int
	Words   int
	Decoded []string
}

// Extract decodes the game artifacts into the workspace: decoded copies of
// every artifact, the name and description record lists as editable JSON,
// the braced description file, and a snapshot the next build reads the
// originals from.
func (b *Builder) Extract(ctx context.Context) (*ExtractResult, error) {
	if b.src == nil {
		return nil, fmt.Errorf("extract needs the game files")
	}

	start := time.Now()
	sw := stopwatch.New()

	m := sw.Start("resolve_key")
	rawIndx, err := b.src.Artifact(consts.ArtifactIndx)
	if err != nil {
		return nil, err
	}
	key, err := b.resolveKey(ctx, rawIndx)
	m.Stop()
	if err != nil {
		return nil, err
	}

	m = sw.Start("decode")
	decoded, order, err := b.decodeArtifacts(key)
	m.Stop()
	if err != nil {
		return nil, err
	}

	m = sw.Start("split")
	decIndx := decoded[consts.ArtifactIndx]
	names := textblob.Split(decIndx, decoded[consts.ArtifactName], textblob.CombinedStride, textblob.PhaseName)
	descs := textblob.Split(decIndx, decoded[consts.ArtifactDesc], textblob.CombinedStride, textblob.PhaseDesc)
	m.Stop()

	m = sw.Start("parts")
	entries := part.DecodePidx(decoded[consts.ArtifactPidx])
	ranges, err := part.DecodeParts(decoded[consts.ArtifactPart], entries)
	m.Stop()
	if err != nil {
		return nil, err
	}

	m = sw.Start("annotate")
	annotated := make([]string, len(descs))
	for i, desc := range descs {
		var rs []part.Range
		if i < len(ranges) {
			rs = ranges[i]
		}
		annotated[i] = brace.Annotate(desc, rs)
	}
	m.Stop()

	var words []string
	if wi, ok := decoded[consts.ArtifactWordIndx]; ok {
		if wt, ok := decoded[consts.ArtifactWordText]; ok {
			for _, rec := range textblob.SplitFlat(wi, wt) {
				words = append(words, util.DecodeUTF8Replace(rec))
			}
		}
	}

	m = sw.Start("write")
	err = b.writeExtracted(order, decoded, names, descs, annotated, words)
	m.Stop()
	if err != nil {
		return nil, err
	}

	m = sw.Start("snapshot")
	codec, err := disk.ParseCodec(conf.SnapshotCodec)
	if err != nil {
		return nil, err
	}
	err = disk.NewStore(b.ws.SnapshotPath()).Save(decoded, codec)
	m.Stop()
	if err != nil {
		return nil, err
	}

	sw.Export(metric.BuildStagesSeconds)
	// cached originals belong to the previous extract
	b.Reset()

	logger.Info("extract finished",
		util.ZapHex("key", key),
		zap.Int("records", len(names)),
		zap.Int("words", len(words)),
		zap.Strings("artifacts", order),
		util.ZapFloat64WithPrec("took_s", time.Since(start).Seconds(), 2))

	return &ExtractResult{
		Key:     key,
		Records: len(names),
		Words:   len(words),
		Decoded: order,
	}, nil
}

func (b *Builder) decodeArtifacts(key uint64) (map[string][]byte, []string, error) {
	total := len(requiredArtifacts) + len(optionalArtifacts)
	decoded := make(map[string][]byte, total)
	order := make([]string, 0, total)

	for _, name := range requiredArtifacts {
		raw, err := b.src.Artifact(name)
		if err != nil {
			return nil, nil, err
		}
		dec, err := crypt.Decode(raw, key)
		if err != nil {
			return nil, nil, fmt.Errorf("artifact %s: %w", name, err)
		}
		decoded[name] = dec
		order = append(order, name)
	}

	for _, name := range optionalArtifacts {
		raw, err := b.src.Artifact(name)
		if err != nil {
			if workspace.IsMissingArtifact(err) {
				logger.Debug("optional artifact not present", zap.String("artifact", name))
				continue
			}
			return nil, nil, err
		}
		dec, err := crypt.Decode(raw, key)
		if err != nil {
			logger.Warn("can't decode optional artifact, skipping",
				zap.String("artifact", name),
				zap.Error(err))
			continue
		}
		decoded[name] = dec
		order = append(order, name)
	}
	return decoded, order, nil
}

func (b *Builder) writeExtracted(
	order []string, decoded map[string][]byte, names, descs, annotated, words []string,
) error {
	for _, name := range order {
		if err := b.ws.WriteFile(b.ws.DecPath(workspace.StageExtracted, name), decoded[name]); err != nil {
			return err
		}
	}

	if err := b.ws.WriteJSONList(b.ws.JSONPath(workspace.StageExtracted, consts.ArtifactName), names); err != nil {
		return err
	}
	if err := b.ws.WriteJSONList(b.ws.JSONPath(workspace.StageExtracted, consts.ArtifactDesc), descs); err != nil {
		return err
	}
	if err := b.ws.WriteJSONList(b.ws.BracedPath(workspace.StageExtracted), annotated); err != nil {
		return err
	}
	if words != nil {
		if err := b.ws.WriteJSONList(b.ws.JSONPath(workspace.StageExtracted, consts.ArtifactWordText), words); err != nil {
			return err
		}
	}
	return nil
}
