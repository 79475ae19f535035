//go:build !go1.22

package dict

import (
	_ "unsafe"
)

// The sampler only needs cheap, unseeded randomness; the runtime's
// per-P generator avoids any locking or allocation.
//
//go:linkname randUint64 runtime.fastrand64
func randUint64() uint64
