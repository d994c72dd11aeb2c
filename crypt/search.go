package crypt

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/duelmod/cardtext/conf"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/metric"
	"github.com/duelmod/cardtext/util"
)

// ErrKeyNotFound reports an exhausted trial budget. The search is resumable:
// retry with start advanced by the previous budget.
var ErrKeyNotFound = errors.New("cipher: key not found")

var searchAttempts atomic.Uint64

// Attempts returns the number of candidate keys tried by all searches so
// far. Useful for progress reporting from another goroutine.
func Attempts() uint64 {
	return searchAttempts.Load()
}

// FindKey tries candidate keys in ascending order from start and returns the
// first one data inflates with. maxTrials bounds the search. Keys follow no
// known pattern between game revisions, trial decode is the only way in.
func FindKey(ctx context.Context, data []byte, start uint64, maxTrials int) (uint64, error) {
	for i := 0; i < maxTrials; i++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("key search aborted: %w", err)
		}

		key := start + uint64(i)
		searchAttempts.Inc()
		metric.CipherKeyTrialsTotal.Inc()

		if _, err := Decode(data, key); err == nil {
			logger.Info("key found",
				util.ZapHex("key", key),
				zap.Int("trials", i+1))
			return key, nil
		}

		if (i+1)%conf.KeyLogProgressEvery == 0 {
			logger.Debug("key search in progress",
				util.ZapHex("last_tried", key),
				zap.Int("trials", i+1))
		}
	}
	return 0, fmt.Errorf("%w: %d keys tried from %#x", ErrKeyNotFound, maxTrials, start)
}
