// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
)

// DecompressorAddress is the fixed pseudo-address at which the state
// override places decompressor code for the duration of one call.
var DecompressorAddress = common.HexToAddress("0x00000000000000000000000000000000000000e0")

// Forwarder programs are opaque pre-assembled byte sequences parameterised
// only by the 20-byte target address spliced between prefix and suffix.
// After reconstructing the payload in memory, each issues an inner CALL to
// the target and returns its result verbatim.
const (
	rleForwarderPrefix = "5f5f5b368110602d575f8083813473"
	rleForwarderSuffix = "5af1503d5f803e3d5ff35b600180820192909160031981019035185f1a8015604c57815301906002565b505f19815282820192607f9060031981019035185f1a818111156072575b160101906002565b838101368437606a56"

	flzForwarderPrefix = "365f73"
	flzForwarderSuffix = "815b838110602f575f80848134865af1503d5f803e3d5ff35b803590815f1a8060051c908115609857600190600783149285831a6007018118840218600201948383011a90601f1660081b0101808603906020811860208211021890815f5b80830151818a015201858110609257505050600201019201916018565b82906075565b6001929350829150019101925f5b82811060b3575001916018565b85851060c1575b60010160a6565b936001818192355f1a878501530194905060ba56"
)

// RleForwarder returns the cd decompressor program that forwards to addr,
// as 0x-prefixed hex.
func RleForwarder(addr common.Address) string {
	return "0x" + rleForwarderPrefix + hex.EncodeToString(addr[:]) + rleForwarderSuffix
}

// FlzForwarder returns the flz decompressor program that forwards to addr,
// as 0x-prefixed hex.
func FlzForwarder(addr common.Address) string {
	return "0x" + flzForwarderPrefix + hex.EncodeToString(addr[:]) + flzForwarderSuffix
}
