package util

import (
	"runtime"
)

// HeapAllocMB reports the live heap allocation in megabytes. Reading
// MemStats briefly stops the world, so sample it per change batch, not
// per unit.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}
