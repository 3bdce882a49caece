package jsonrpc

import "sync/atomic"

// IDAllocator hands out monotonically increasing integer ids, one per
// backend, so backend-side request ids never collide with ids already in
// flight to that backend.
type IDAllocator struct {
	counter uint64
}

// Next returns the next backend-side RequestId.
func (a *IDAllocator) Next() RequestId {
	return int64(atomic.AddUint64(&a.counter, 1))
}
