package ranking

import "sync"

const lockStripes = 64

// stripedLock serializes work on the same (user, frame) pair inside the process.
// Distinct pairs may share a stripe.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(userID, frameID int64) func() {
	h := uint64(userID)*0x9E3779B97F4A7C15 ^ uint64(frameID)
	mu := &l.stripes[h%lockStripes]
	mu.Lock()
	return mu.Unlock
}
