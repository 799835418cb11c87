package buffer

import "sync"

// runePool holds backing arrays of DefaultSize runes. Buffers of other sizes,
// and buffers that grew, are left to the garbage collector.
var runePool = sync.Pool{
	New: func() interface{} {
		s := make([]rune, DefaultSize)
		return &s
	},
}

// getRunes returns a rune slice of length size, from the pool when size is
// DefaultSize.
func getRunes(size int) []rune {
	if size != DefaultSize {
		return make([]rune, size)
	}
	return *runePool.Get().(*[]rune)
}

// putRunes returns data to the pool. The caller must not use it afterwards.
func putRunes(data []rune) {
	if len(data) != DefaultSize || cap(data) != DefaultSize {
		return
	}
	runePool.Put(&data)
}
