package ethzip

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestForwarders_SpliceTargetAddress(t *testing.T) {
	addr := common.HexToAddress("0x000000000000000000000000000000000000dEaD")

	for _, tc := range []struct {
		name   string
		code   string
		prefix string
		suffix string
	}{
		{name: "rle", code: RleForwarder(addr), prefix: rleForwarderPrefix, suffix: rleForwarderSuffix},
		{name: "flz", code: FlzForwarder(addr), prefix: flzForwarderPrefix, suffix: flzForwarderSuffix},
	} {
		t.Run(tc.name, func(t *testing.T) {
			want := "0x" + tc.prefix + "000000000000000000000000000000000000dead" + tc.suffix
			if tc.code != want {
				t.Fatalf("forwarder mismatch:\n got %s\nwant %s", tc.code, want)
			}
			if len(tc.code)%2 != 0 {
				t.Fatal("forwarder hex has odd length")
			}
			if strings.ToLower(tc.code) != tc.code {
				t.Fatal("forwarder hex is not lowercase")
			}
		})
	}
}

func TestDecompressorAddress(t *testing.T) {
	if got := addressHex(DecompressorAddress); got != "0x00000000000000000000000000000000000000e0" {
		t.Fatalf("decompressor address = %s", got)
	}
}
