package util

import (
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

func ZapFloat64WithPrec(name string, val float64, prec int) zap.Field {
	r := math.Pow(10, float64(prec))
	return zap.Float64(name, math.Round(val*r)/r)
}

func ZapHex(name string, val uint64) zap.Field {
	return zap.String(name, "0x"+strconv.FormatUint(val, 16))
}

// DecodeUTF8Replace decodes b as UTF-8, substituting U+FFFD for every
// ill-formed sequence instead of failing. Game data contains occasional
// corrupt records and decoding must stay total.
func DecodeUTF8Replace(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		// the decoder replaces instead of erroring, this path is for
		// transformer internals only
		return string(b)
	}
	return string(out)
}
