// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Caller abstracts the JSON-RPC client that issues eth_call requests.
// *rpc.Client from go-ethereum satisfies it.
type Caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// callArgs is the transaction object of an eth_call request.
type callArgs struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Execute issues the call described by c against client at the given block
// tag ("latest" when empty) and returns the hex-encoded result.
//
// Compressed descriptors are tried with their state override first; if the
// node rejects the request and AllowFallback is set, the original (to, data)
// is retried without an override. With fallback disabled the failure is
// reported as ErrCompressedCallFailed. A cancelled context aborts before the
// fallback round-trip. Vanilla descriptors issue the original request
// directly.
func (c *CompressedCall) Execute(ctx context.Context, client Caller, block string) (string, error) {
	if block == "" {
		block = "latest"
	}

	if c.Override != nil {
		var res hexutil.Bytes
		err := client.CallContext(ctx, &res, "eth_call", callArgs{To: c.To, Data: c.Data}, block, c.Override)
		if err == nil {
			return res.String(), nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !c.AllowFallback {
			return "", fmt.Errorf("%w: %v", ErrCompressedCallFailed, err)
		}
	}

	var res hexutil.Bytes
	if err := client.CallContext(ctx, &res, "eth_call", callArgs{To: c.vanillaTo, Data: c.vanillaData}, block); err != nil {
		return "", fmt.Errorf("eth_call: %w", err)
	}

	return res.String(), nil
}
