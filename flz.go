// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import "fmt"

// FlzCompress compresses hex-encoded data with the FastLZ variant used by
// Solady and returns a 0x-prefixed hex string. The output is bit-exact with
// the reference implementation.
func FlzCompress(data string) (string, error) {
	in, err := hexToBytes(data)
	if err != nil {
		return "", err
	}

	return bytesToHex(flzCompress(in)), nil
}

// FlzDecompress reverses FlzCompress. Returns ErrInvalidBackReference when a
// token points before the start of the output and ErrTruncated when a token
// runs off the end of the input.
func FlzDecompress(data string) (string, error) {
	in, err := hexToBytes(data)
	if err != nil {
		return "", err
	}

	out, err := flzDecompress(in)
	if err != nil {
		return "", err
	}

	return bytesToHex(out), nil
}

// flzCompress is a greedy LZ77 parse over a fixed 8192-entry hash table.
// Control flow and token emission mirror the reference byte for byte,
// including its quirks: the last 13 bytes are never match candidates, and
// match extension advances one position past the first mismatch.
func flzCompress(in []byte) []byte {
	n := len(in)
	if n <= 0 {
		return nil
	}
	b := n - 4

	ht := acquireFlzTable()
	defer releaseFlzTable(ht)

	u24 := func(i int) int {
		return int(in[i]) | int(in[i+1])<<8 | int(in[i+2])<<16
	}
	hash := func(x int) int {
		// #nosec G115 -- hashing intentionally truncates to 32 bits.
		return int((flzHashSeed*uint32(x))>>19) & (flzHashSize - 1)
	}

	out := make([]byte, 0, n/2)
	a, i := 0, 2

	for i < b-9 {
		// Scan forward until the hashed 3-byte value at i repeats within the
		// window. The candidate slot is overwritten before comparing, and
		// distances at or beyond the window compare against a sentinel that
		// can never equal a 24-bit value.
		var s, c, r, d int
		for {
			s = u24(i)
			h := hash(s)
			r = ht[h]
			ht[h] = i
			d = i - r
			if d < flzWindow {
				c = u24(r)
			} else {
				c = flzNoMatch
			}
			i++
			if !(i < b-9 && s != c) {
				break
			}
		}
		if i >= b-9 {
			break
		}
		i--

		if i > a {
			out = appendFlzLiterals(out, in[a:i])
		}

		// Extend the confirmed 3-byte match. The budget e collapses to zero
		// at the first mismatch, but the counter still advances once, so the
		// final length includes that position. This is the reference
		// semantics and must be preserved for bit-exact output.
		matchLen := 0
		p, q := r+3, i+3
		e := b - q
		for matchLen < e {
			if in[p+matchLen] != in[q+matchLen] {
				e = 0
			}
			matchLen++
		}
		i += matchLen

		d-- // distance is stored biased by one
		for matchLen > flzMaxMatchToken {
			out = append(out, opcodeByte(flzLongMatchMarker+(d>>8)), 253, opcodeByte(d))
			matchLen -= flzMaxMatchToken
		}
		if matchLen < 7 {
			out = append(out, opcodeByte((matchLen<<5)+(d>>8)), opcodeByte(d))
		} else {
			out = append(out, opcodeByte(flzLongMatchMarker+(d>>8)), opcodeByte(matchLen-7), opcodeByte(d))
		}

		// Seed the table with the two positions after the match.
		if i+2 < n {
			ht[hash(u24(i))] = i
		}
		i++
		if i+2 < n {
			ht[hash(u24(i))] = i
		}
		i++
		a = i
	}

	return appendFlzLiterals(out, in[a:n])
}

// appendFlzLiterals emits a literal run in chunks of up to 32 bytes. A full
// chunk uses header byte 31; the remainder uses its length minus one.
func appendFlzLiterals(out []byte, lit []byte) []byte {
	for len(lit) >= flzMaxLiteralRun {
		out = append(out, flzMaxLiteralRun-1)
		out = append(out, lit[:flzMaxLiteralRun]...)
		lit = lit[flzMaxLiteralRun:]
	}

	if len(lit) > 0 {
		out = append(out, opcodeByte(len(lit)-1))
		out = append(out, lit...)
	}

	return out
}

// flzDecompress decodes literal and match tokens. Matches may overlap their
// own output; copyBackRef reproduces the byte-serial LZ77 semantics where
// newly written bytes become readable to the same token.
func flzDecompress(in []byte) ([]byte, error) {
	var out []byte

	for i := 0; i < len(in); {
		t := in[i] >> 5

		if t == 0 {
			litLen := 1 + int(in[i]&0x1f)
			i++
			if i+litLen > len(in) {
				return nil, fmt.Errorf("%w: literal run of %d bytes at offset %d", ErrTruncated, litLen, i-1)
			}
			out = append(out, in[i:i+litLen]...)
			i += litLen
			continue
		}

		var dist, matchLen int
		if t < 7 {
			if i+1 >= len(in) {
				return nil, fmt.Errorf("%w: short match token at offset %d", ErrTruncated, i)
			}
			dist = 256*int(in[i]&0x1f) + int(in[i+1])
			matchLen = 2 + int(t)
			i += 2
		} else {
			if i+2 >= len(in) {
				return nil, fmt.Errorf("%w: long match token at offset %d", ErrTruncated, i)
			}
			dist = 256*int(in[i]&0x1f) + int(in[i+2])
			matchLen = 9 + int(in[i+1])
			i += 3
		}

		src := len(out) - dist - 1
		if src < 0 {
			return nil, fmt.Errorf("%w: source offset %d", ErrInvalidBackReference, src)
		}

		out = append(out, make([]byte, matchLen)...)
		if err := copyBackRef(out, len(out)-matchLen, dist+1, matchLen); err != nil {
			return nil, err
		}
	}

	return out, nil
}
