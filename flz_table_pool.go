package ethzip

import "sync"

// flzTablePool recycles the fixed-size hash tables used by flzCompress.
var flzTablePool = sync.Pool{
	New: func() any {
		return &[flzHashSize]int{}
	},
}

// acquireFlzTable acquires a zeroed hash table from the pool.
func acquireFlzTable() *[flzHashSize]int {
	ht := flzTablePool.Get().(*[flzHashSize]int)
	clear(ht[:])
	return ht
}

// releaseFlzTable releases a hash table to the pool.
func releaseFlzTable(ht *[flzHashSize]int) {
	if ht == nil {
		return
	}

	flzTablePool.Put(ht)
}
