package offset

import (
	"math"
)

// FNV-1a 64-bit parameters
const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

// hashString is FNV-1a over the bytes followed by an avalanche finalizer.
// Plain FNV clusters on sequential inputs ("1".."1000" land in a narrow
// band once reduced modulo the period), which defeats desynchronization;
// the finalizer spreads neighboring inputs across the full 64-bit range.
func hashString(s string) uint64 {
	h := uint64(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return avalanche(h)
}

// avalanche is the splitmix64 finalizer
func avalanche(h uint64) uint64 {
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// mix combines a seed hash with a per-feature index into a fresh hash
func mix(seed, index uint64) uint64 {
	return avalanche(seed ^ (index+1)*0x9e3779b97f4a7c15)
}

// uniform01 maps a hash onto [0, 1) using the top 53 bits
func uniform01(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}

// seedHash normalizes a numeric or string seed through the same hash
func seedHash(seed any) uint64 {
	switch s := seed.(type) {
	case nil:
		return avalanche(fnvOffset)
	case string:
		return hashString(s)
	case float64:
		return avalanche(math.Float64bits(s))
	case float32:
		return avalanche(math.Float64bits(float64(s)))
	case int:
		return avalanche(uint64(int64(s)))
	case int32:
		return avalanche(uint64(int64(s)))
	case int64:
		return avalanche(uint64(s))
	case uint:
		return avalanche(uint64(s))
	case uint64:
		return avalanche(s)
	default:
		return hashString(stringify(s))
	}
}
