// Package bitops holds the two primitives that generated decoders are built
// from. Masks are always compile-time constants at the call site.
package bitops

// ApplyMask returns the bits of raw selected by mask, left in place.
func ApplyMask(raw, mask uint32) uint32 {
	return raw & mask
}

// ApplyMaskAndShift selects the bits of raw covered by mask and moves the
// bit at position msb so that it lands on position from.
func ApplyMaskAndShift(raw, mask uint32, msb, from uint8) uint32 {
	raw &= mask
	switch {
	case msb > from:
		return raw >> (msb - from)
	case msb < from:
		return raw << (from - msb)
	default:
		return raw
	}
}
