// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"fmt"
	"strings"

	"github.com/xyproto/env/v2"
)

// Alg identifies a compression algorithm for the selector.
type Alg string

// Recognised algorithm names. AlgVanilla is the no-compression path; the
// selector also degrades to it whenever compression would not pay off.
const (
	AlgAuto    Alg = "auto"
	AlgCd      Alg = "cd"
	AlgFlz     Alg = "flz"
	AlgJit     Alg = "jit"
	AlgVanilla Alg = "vanilla"
)

// ParseAlg normalises an algorithm name. Unknown names return AlgVanilla
// together with ErrUnsupportedAlg; the selector treats them as vanilla.
func ParseAlg(s string) (Alg, error) {
	switch a := Alg(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgAuto, AlgCd, AlgFlz, AlgJit, AlgVanilla:
		return a, nil
	}

	return AlgVanilla, fmt.Errorf("%w: %q", ErrUnsupportedAlg, s)
}

// Options configures compression selection and call execution.
type Options struct {
	// Alg selects the codec; AlgAuto lets the cost model decide.
	Alg Alg
	// MinSize is the payload size in bytes below which compression is skipped.
	MinSize int
	// AllowFallback retries the original request when the compressed call fails.
	AllowFallback bool
}

// DefaultOptions returns options seeded from the environment:
// ETHZIP_ALG, ETHZIP_MIN_SIZE and ETHZIP_NO_FALLBACK.
func DefaultOptions() *Options {
	return &Options{
		Alg:           Alg(env.Str("ETHZIP_ALG", string(AlgAuto))),
		MinSize:       env.Int("ETHZIP_MIN_SIZE", defaultMinSize),
		AllowFallback: !env.Bool("ETHZIP_NO_FALLBACK"),
	}
}
