package upload

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// FallbackFilename names uploads that arrive without a filename.
const FallbackFilename = "upload"

// KeyStrategy selects the token that disambiguates storage keys.
type KeyStrategy string

const (
	// KeyTimestamp prefixes keys with a strictly increasing UnixNano value.
	KeyTimestamp KeyStrategy = "timestamp"
	// KeyUUID prefixes keys with a random UUIDv4.
	KeyUUID KeyStrategy = "uuid"
)

// ParseKeyStrategy maps a config value to a KeyStrategy.
func ParseKeyStrategy(s string) (KeyStrategy, error) {
	switch KeyStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyTimestamp:
		return KeyTimestamp, nil
	case KeyUUID:
		return KeyUUID, nil
	}
	return "", fmt.Errorf("unknown key strategy %q", s)
}

// KeyAssigner produces storage keys of the form "<token>-<filename>".
// Two calls never return the same key, whatever the filenames.
type KeyAssigner struct {
	strategy KeyStrategy
	now      func() time.Time
	last     atomic.Int64
}

// NewKeyAssigner returns an assigner using strategy.
func NewKeyAssigner(strategy KeyStrategy) *KeyAssigner {
	return &KeyAssigner{strategy: strategy, now: time.Now}
}

// Assign returns a fresh key for filename.
func (a *KeyAssigner) Assign(filename string) string {
	return a.token() + "-" + CleanFilename(filename)
}

func (a *KeyAssigner) token() string {
	if a.strategy == KeyUUID {
		return uuid.NewString()
	}
	return strconv.FormatInt(a.nextTick(), 10)
}

// nextTick returns max(now, last+1) and records it.
func (a *KeyAssigner) nextTick() int64 {
	for {
		last := a.last.Load()
		next := a.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if a.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

// CleanFilename strips directory components and falls back to
// FallbackFilename when nothing usable is left.
func CleanFilename(filename string) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/")
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" || name == "" {
		return FallbackFilename
	}
	return name
}
