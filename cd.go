// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

// CdCompress compresses hex-encoded calldata with the LibZip cd run-length
// format and returns a 0x-prefixed hex string. The format is bit-exact with
// the Solady reference implementation.
func CdCompress(data string) (string, error) {
	in, err := hexToBytes(data)
	if err != nil {
		return "", err
	}

	return bytesToHex(cdCompress(in)), nil
}

// CdDecompress reverses CdCompress. Returns ErrTruncated when a run token
// lacks its length byte.
func CdDecompress(data string) (string, error) {
	in, err := hexToBytes(data)
	if err != nil {
		return "", err
	}

	out, err := cdDecompress(in)
	if err != nil {
		return "", err
	}

	return bytesToHex(out), nil
}

// cdCompress encodes runs of 0x00 (up to 128) and 0xFF (up to 32) as
// two-byte tokens and passes everything else through as literals. The first
// four output bytes are XOR-obfuscated with 0xFF, whatever they hold.
func cdCompress(in []byte) []byte {
	out := make([]byte, 0, len(in))

	push := func(b byte) {
		if len(out) < cdHeaderSize {
			b ^= 0xff
		}
		out = append(out, b)
	}

	flushFF := func(y int) {
		push(cdRunMarker)
		push(opcodeByte((y - 1) | cdFFRunFlag))
	}
	flushZero := func(z int) {
		push(cdRunMarker)
		push(opcodeByte(z - 1))
	}

	var z, y int // pending 0x00 and 0xFF run lengths
	for _, c := range in {
		switch c {
		case 0x00:
			if y > 0 {
				flushFF(y)
				y = 0
			}
			z++
			if z == cdMaxZeroRun {
				flushZero(z)
				z = 0
			}

		case 0xff:
			if z > 0 {
				flushZero(z)
				z = 0
			}
			y++
			if y == cdMaxFFRun {
				flushFF(y)
				y = 0
			}

		default:
			if y > 0 {
				flushFF(y)
				y = 0
			}
			if z > 0 {
				flushZero(z)
				z = 0
			}
			push(c)
		}
	}

	if y > 0 {
		flushFF(y)
	}
	if z > 0 {
		flushZero(z)
	}

	return out
}

// cdDecompress decodes a cd stream. A 0x00 byte (after de-obfuscation)
// introduces a run token; anything else is a literal.
func cdDecompress(in []byte) ([]byte, error) {
	out := make([]byte, 0, len(in)*2)

	pos := 0
	next := func() byte {
		b := in[pos]
		if pos < cdHeaderSize {
			b ^= 0xff
		}
		pos++
		return b
	}

	for pos < len(in) {
		c := next()
		if c != cdRunMarker {
			out = append(out, c)
			continue
		}

		if pos >= len(in) {
			return nil, ErrTruncated
		}
		l := next()

		s := int(l&0x7f) + 1
		if l&cdFFRunFlag == 0 {
			out = append(out, make([]byte, s)...)
			continue
		}

		// A 0xFF run longer than 32 decodes as 32 bytes of 0xFF followed by
		// zeros. cdCompress never emits such a token (it caps runs at 32),
		// but the branch is part of the reference format and round-trips
		// adversarial streams bit-exactly.
		nFF := min(s, cdMaxFFRun)
		for i := 0; i < nFF; i++ {
			out = append(out, 0xff)
		}
		out = append(out, make([]byte, s-nFF)...)
	}

	return out, nil
}
