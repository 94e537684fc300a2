// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

/*
Package ethzip compresses Ethereum call data for eth_call requests.

The compressed payload is paired with a small decompressor program that is
injected at a fixed pseudo-address via the provider's state-override
mechanism, so the remote node reconstructs the original calldata inside the
EVM and forwards it to the intended target contract.

Three codecs are available, plus a "vanilla" fallthrough:

  - cd: run-length encoding specialised for 0x00/0xFF bytes (LibZip
    compatible, bit-exact).
  - flz: a FastLZ variant with back-references (Solady compatible,
    bit-exact).
  - jit: a per-payload EVM program that rebuilds the calldata in memory and
    issues the inner CALL itself.

# Compress

Pick a codec explicitly or let the selector choose:

	call, err := ethzip.CompressCallData(dataHex, targetHex, nil)
	call, err := ethzip.CompressCallData(dataHex, targetHex, &ethzip.Options{Alg: ethzip.AlgJit})

The returned CompressedCall carries the transport-ready (to, data, override)
triple plus size and benefit metadata. Payloads that do not benefit degrade
to vanilla.

# Execute

Execute issues the compressed eth_call and, when allowed, falls back to the
original request if the node rejects the override:

	out, err := call.Execute(ctx, rpcClient, "latest")

Raw codec access is exposed as CdCompress/CdDecompress,
FlzCompress/FlzDecompress and JitBytecode, all operating on 0x-prefixed hex
strings.
*/
package ethzip
