package builder

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/duelmod/cardtext/conf"
	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/crypt"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/util"
)

// resolveKey walks the candidate ladder: cached key file, quick probe
// search, full brute force. probe is an encrypted buffer the key must
// actually decode, a stale cached key degrades to searching instead of
// failing the run.
func (b *Builder) resolveKey(ctx context.Context, probe []byte) (uint64, error) {
	keyPath := b.ws.KeyFilePath()

	if key, ok := crypt.ReadKeyFile(keyPath); ok {
		if _, err := crypt.Decode(probe, key); err == nil {
			logger.Info("crypto key loaded",
				util.ZapHex("key", key),
				zap.String("source", "key_file"))
			return key, nil
		}
		logger.Warn("cached crypto key rejected, searching", util.ZapHex("key", key))
	}

	key, err := crypt.FindKey(ctx, probe, 0, conf.DetectTrialLimit)
	if errors.Is(err, crypt.ErrKeyNotFound) && conf.KeyTrialLimit > conf.DetectTrialLimit {
		logger.Info("quick probe exhausted, brute forcing",
			zap.Int("tried", conf.DetectTrialLimit),
			zap.Int("limit", conf.KeyTrialLimit))
		key, err = crypt.FindKey(ctx, probe,
			uint64(conf.DetectTrialLimit), conf.KeyTrialLimit-conf.DetectTrialLimit)
	}
	if err != nil {
		return 0, err
	}

	if err := crypt.WriteKeyFile(keyPath, key); err != nil {
		logger.Warn("can't cache crypto key", zap.Error(err))
	}
	return key, nil
}

// buildKey returns the key for re-encoding. The key file is trusted as is:
// there is nothing to probe it against unless the game dir is around.
func (b *Builder) buildKey(ctx context.Context) (uint64, error) {
	if key, ok := crypt.ReadKeyFile(b.ws.KeyFilePath()); ok {
		return key, nil
	}
	if b.src != nil {
		raw, err := b.src.Artifact(consts.ArtifactIndx)
		if err == nil {
			return b.resolveKey(ctx, raw)
		}
	}
	return 0, fmt.Errorf("no crypto key in %s: run extract first or point at the game files", b.ws.Root())
}
