package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Run IDs are 18-character Crockford Base32 strings: a 10-character
// millisecond timestamp followed by 8 random characters, so listing runs by
// ID orders them by creation time. The timestamp is kept strictly monotonic
// under runIDMu, which also makes IDs unique within one process.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	runIDMu   sync.Mutex
	runIDLast int64
)

func newRunID() string {
	runIDMu.Lock()
	ts := time.Now().UnixMilli()
	if ts <= runIDLast {
		ts = runIDLast + 1
	}
	runIDLast = ts
	runIDMu.Unlock()

	var out [18]byte
	v := ts
	for i := 9; i >= 0; i-- {
		out[i] = crockford[v&31]
		v >>= 5
	}

	var rnd [8]byte
	rand.Read(rnd[:])
	n := binary.BigEndian.Uint64(rnd[:])
	for i := 17; i >= 10; i-- {
		out[i] = crockford[n&31]
		n >>= 5
	}
	return string(out[:])
}
