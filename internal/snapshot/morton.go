package snapshot

import (
	"math"
	"sort"
)

func mortonEncode(x, y uint32) uint64 {
	var code uint64
	for i := uint(0); i < 32; i++ {
		code |= uint64((x>>i)&1)<<(2*i) | uint64((y>>i)&1)<<(2*i+1)
	}
	return code
}

// MortonOrder returns the permutation that sorts s along a Z-order curve over
// its bounding box, the way cache-friendly engines reorder particles.
// Applying it with Permute yields the reordered snapshot.
func MortonOrder(s Snapshot) []int {
	minX, minY, maxX, maxY := s.Bounds()
	width := maxX - minX
	height := maxY - minY
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}

	scaleX := float64(math.MaxUint32) / width
	scaleY := float64(math.MaxUint32) / height

	codes := make([]uint64, len(s))
	order := make([]int, len(s))
	for i, p := range s {
		ix := uint32(math.Min((p.X-minX)*scaleX, math.MaxUint32))
		iy := uint32(math.Min((p.Y-minY)*scaleY, math.MaxUint32))
		codes[i] = mortonEncode(ix, iy)
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return codes[order[a]] < codes[order[b]]
	})
	return order
}
