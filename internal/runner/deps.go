package runner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

const runIDSuffixBytes = 6

// Deps injects the clock and randomness that shape run identity, so tests
// can pin both.
type Deps struct {
	Now  func() time.Time
	Rand io.Reader
}

func (deps Deps) filled() Deps {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.Reader
	}
	return deps
}

// NewRunID returns a fresh run identifier.
func (deps Deps) NewRunID() (string, error) {
	deps = deps.filled()
	buf := make([]byte, runIDSuffixBytes)
	if _, err := io.ReadFull(deps.Rand, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return FormatRunID(deps.Now(), hex.EncodeToString(buf)), nil
}

// FormatRunID renders a run identifier for a timestamp and suffix. Run ids
// sort lexicographically by time, which run resolution relies on.
func FormatRunID(now time.Time, suffix string) string {
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}
