package streamutil

import "sync"

// readBufferSize is the chunk size sessions read transport bodies with.
const readBufferSize = 64 * 1024

var readBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, readBufferSize)
		return &b
	},
}

// GetReadBuffer returns a pooled read buffer of readBufferSize bytes.
func GetReadBuffer() *[]byte {
	return readBufPool.Get().(*[]byte)
}

// PutReadBuffer recycles a buffer obtained from GetReadBuffer.
func PutReadBuffer(b *[]byte) {
	if b == nil || len(*b) != readBufferSize {
		return
	}
	readBufPool.Put(b)
}
