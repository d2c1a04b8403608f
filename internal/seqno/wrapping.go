// Package seqno implements the 32-bit wraparound sequence-number
// arithmetic used to translate between wire sequence numbers and
// absolute 64-bit stream positions.
package seqno

// Wrapping is a TCP sequence number as it appears on the wire: a
// 32-bit value that wraps modulo 2^32.
type Wrapping uint32

// Wrap converts an absolute 64-bit sequence count n into the wire
// sequence number that would be sent for it, given the stream's ISN.
func Wrap(n uint64, isn Wrapping) Wrapping {
	return Wrapping(uint32(isn) + uint32(n))
}

// Unwrap returns the absolute 64-bit sequence count whose wrapped wire
// value equals s, choosing among the infinitely many candidates the
// one closest to checkpoint. Ties resolve to the smaller candidate.
func Unwrap(s Wrapping, isn Wrapping, checkpoint uint64) uint64 {
	offset := uint64(uint32(s) - uint32(isn))

	const wrapSpan = uint64(1) << 32
	base := checkpoint &^ (wrapSpan - 1)

	candidate := base + offset
	best := candidate

	if candidate >= wrapSpan {
		if lower := candidate - wrapSpan; absDiff(lower, checkpoint) <= absDiff(best, checkpoint) {
			best = lower
		}
	}
	if higher := candidate + wrapSpan; absDiff(higher, checkpoint) < absDiff(best, checkpoint) {
		best = higher
	}

	return best
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
