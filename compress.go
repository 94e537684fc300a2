// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"
)

// Sizes reports the byte counts behind a compression decision.
type Sizes struct {
	Original   int `json:"original"`
	Compressed int `json:"compressed"`
	Code       int `json:"code"`
}

// Benefit reports what the selected representation saves over vanilla.
type Benefit struct {
	BytesSaved int     `json:"bytes_saved"`
	Pct        float64 `json:"pct"`
}

// OverrideAccount is the per-address state override payload: the code placed
// at the address for the duration of one call.
type OverrideAccount struct {
	Code hexutil.Bytes `json:"code"`
}

// StateOverride is the third eth_call parameter: a mapping from address to
// overridden account state. Addresses marshal as lowercase 0x-prefixed hex.
type StateOverride map[common.Address]OverrideAccount

// CompressedCall is a transport-ready call descriptor: the (to, data,
// override) triple for eth_call plus selection metadata. Vanilla descriptors
// carry a nil Override.
type CompressedCall struct {
	To       string
	Data     string
	Override StateOverride

	Algo    Alg
	Sizes   Sizes
	Benefit Benefit

	// AllowFallback retries the original request when the compressed call
	// is rejected.
	AllowFallback bool

	vanillaTo   string
	vanillaData string
}

// CompressCallData compresses hex calldata destined for target and selects
// the cheapest representation. opts may be nil (DefaultOptions). Payloads
// below MinSize, unknown algorithm names and payloads that do not benefit
// all degrade to vanilla; the only error is malformed input hex.
func CompressCallData(data, target string, opts *Options) (*CompressedCall, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	raw, err := hexToBytes(data)
	if err != nil {
		return nil, err
	}
	dataHex := bytesToHex(raw)
	originalSize := len(raw)

	vanilla := func() *CompressedCall {
		return &CompressedCall{
			To:            target,
			Data:          dataHex,
			Algo:          AlgVanilla,
			Sizes:         Sizes{Original: originalSize, Compressed: originalSize},
			AllowFallback: opts.AllowFallback,
			vanillaTo:     target,
			vanillaData:   dataHex,
		}
	}

	if originalSize < opts.MinSize {
		return vanilla(), nil
	}

	alg, algErr := ParseAlg(string(opts.Alg))
	if algErr != nil || alg == AlgVanilla {
		return vanilla(), nil
	}

	selected := alg
	var cdHex, flzHex string
	if alg == AlgAuto {
		if originalSize >= jitSizeThreshold {
			selected = AlgJit
		} else {
			// Trial-compress with both byte codecs concurrently and keep
			// the shorter stream. The codecs are pure functions, so the two
			// goroutines share nothing.
			g := new(errgroup.Group)
			g.Go(func() error {
				var err error
				cdHex, err = CdCompress(dataHex)
				return err
			})
			g.Go(func() error {
				var err error
				flzHex, err = FlzCompress(dataHex)
				return err
			})
			if err := g.Wait(); err != nil {
				// An uncompressible payload is not a caller error.
				return vanilla(), nil
			}

			if len(flzHex) < len(cdHex) {
				selected = AlgFlz
			} else {
				selected = AlgCd
			}
		}
	}

	targetAddr := common.HexToAddress(target)

	var calldataHex, codeHex string
	switch selected {
	case AlgJit:
		codeHex = bytesToHex(jitBytecode(raw))
		calldataHex = addressWord(targetAddr)
	case AlgFlz:
		if flzHex == "" {
			flzHex = bytesToHex(flzCompress(raw))
		}
		calldataHex = flzHex
		codeHex = FlzForwarder(targetAddr)
	case AlgCd:
		if cdHex == "" {
			cdHex = bytesToHex(cdCompress(raw))
		}
		calldataHex = cdHex
		codeHex = RleForwarder(targetAddr)
	}

	total := sizeBytes(calldataHex) + sizeBytes(codeHex)
	if total >= originalSize {
		return vanilla(), nil
	}

	code, err := hexToBytes(codeHex)
	if err != nil {
		return nil, err
	}

	saved := originalSize - total
	return &CompressedCall{
		To:       addressHex(DecompressorAddress),
		Data:     calldataHex,
		Override: StateOverride{DecompressorAddress: {Code: hexutil.Bytes(code)}},
		Algo:     selected,
		Sizes: Sizes{
			Original:   originalSize,
			Compressed: sizeBytes(calldataHex),
			Code:       sizeBytes(codeHex),
		},
		Benefit: Benefit{
			BytesSaved: saved,
			Pct:        float64(saved) / float64(originalSize) * 100,
		},
		AllowFallback: opts.AllowFallback,
		vanillaTo:     target,
		vanillaData:   dataHex,
	}, nil
}

// addressWord right-aligns addr into a 32-byte word, the calldata shape the
// jit program loads its CALL target from.
func addressWord(addr common.Address) string {
	var word [32]byte
	copy(word[12:], addr[:])
	return bytesToHex(word[:])
}

// addressHex is the lowercase unchecksummed form used for transport keys.
func addressHex(addr common.Address) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// sizeBytes is the byte length of a hex string with or without 0x prefix.
func sizeBytes(hexStr string) int {
	return len(strings.TrimPrefix(hexStr, "0x")) / 2
}
