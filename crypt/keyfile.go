package crypt

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/duelmod/cardtext/consts"
)

// The key cache file is shared with other tools of the modding ecosystem:
// a single line of 0x-prefixed lowercase hex.

func ReadKeyFile(path string) (uint64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	key, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return key, true
}

func WriteKeyFile(path string, key uint64) error {
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%#x", key)), consts.DefaultFilePermission); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	return nil
}
