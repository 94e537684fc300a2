package ethzip

import (
	"bytes"
	"math/rand"
	"testing"
)

func benchmarkInputSets() map[string][]byte {
	rng := rand.New(rand.NewSource(99))
	random4k := make([]byte, 4096)
	rng.Read(random4k)

	abi := make([]byte, 4096)
	copy(abi, []byte{0xa9, 0x05, 0x9c, 0xbb})
	for i := 36; i < len(abi); i += 32 {
		abi[i] = byte(i)
	}

	return map[string][]byte{
		"zeros-4k":   make([]byte, 4096),
		"pattern-4k": bytes.Repeat([]byte("ABCDEF0123456789"), 256),
		"abi-4k":     abi,
		"random-4k":  random4k,
	}
}

func BenchmarkCdCompress(b *testing.B) {
	for name, data := range benchmarkInputSets() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				cdCompress(data)
			}
		})
	}
}

func BenchmarkFlzCompress(b *testing.B) {
	for name, data := range benchmarkInputSets() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				flzCompress(data)
			}
		})
	}
}

func BenchmarkFlzDecompress(b *testing.B) {
	for name, data := range benchmarkInputSets() {
		compressed := flzCompress(data)
		if _, err := flzDecompress(compressed); err != nil {
			b.Fatalf("setup flzDecompress failed for %s: %v", name, err)
		}

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := flzDecompress(compressed); err != nil {
					b.Fatalf("flzDecompress failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkJitBytecode(b *testing.B) {
	for name, data := range benchmarkInputSets() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				jitBytecode(data)
			}
		})
	}
}
