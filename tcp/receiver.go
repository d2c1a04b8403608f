package tcp

import (
	"github.com/gotcp-project/gotcp-engine/internal/seqno"
	"github.com/gotcp-project/gotcp-engine/internal/stream"
)

// Receiver turns incoming segments into ordered stream bytes on top
// of a Reassembler, and derives the ackno/window advertised back to
// the peer.
type Receiver struct {
	reassembler *stream.Reassembler
	isn         *seqno.Wrapping
}

// NewReceiver returns a Receiver buffering into a stream of the given
// capacity.
func NewReceiver(capacity int) *Receiver {
	return &Receiver{reassembler: stream.NewReassembler(capacity)}
}

// Stream exposes the assembled byte stream for application reads.
func (r *Receiver) Stream() *stream.ByteStream { return r.reassembler.Output() }

// SegmentReceived delivers seg's payload (and FIN, if set) into the
// reassembler, first learning the ISN from the first SYN seen.
func (r *Receiver) SegmentReceived(seg Segment) {
	if r.isn == nil {
		if !seg.Syn {
			return
		}
		isn := seg.Seqno
		r.isn = &isn
	}

	checkpoint := r.reassembler.Output().BytesWritten() + 1
	abs := seqno.Unwrap(seg.Seqno, *r.isn, checkpoint)

	var streamIndex int64
	if seg.Syn {
		streamIndex = 0
	} else {
		streamIndex = int64(abs) - 1
	}

	r.reassembler.PushSubstring(seg.Payload, streamIndex, seg.Fin)
}

// Ackno returns the absolute ack wrapped against the ISN, or ok=false
// until a SYN has been received.
func (r *Receiver) Ackno() (ack seqno.Wrapping, ok bool) {
	if r.isn == nil {
		return 0, false
	}
	abs := r.reassembler.Output().BytesWritten() + 1
	if r.reassembler.Output().InputEnded() {
		abs++
	}
	return seqno.Wrap(abs, *r.isn), true
}

// WindowSize is the receiver's remaining capacity, clamped to the
// 16-bit wire field.
func (r *Receiver) WindowSize() uint16 {
	remaining := r.reassembler.Output().RemainingCapacity()
	if remaining > 65535 {
		return 65535
	}
	return uint16(remaining)
}

// ISN reports the learned initial sequence number, if any.
func (r *Receiver) ISN() (seqno.Wrapping, bool) {
	if r.isn == nil {
		return 0, false
	}
	return *r.isn, true
}
