package tcp

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/gotcp-project/gotcp-engine/internal/seqno"
	"github.com/gotcp-project/gotcp-engine/internal/stream"
	"github.com/sirupsen/logrus"
)

// senderState mirrors the purely-functional state derivation of spec
// §4.5. It is never stored directly; Sender.state() recomputes it
// from nextSeqno/stream/outstanding on demand.
type senderState int

const (
	stateClosed senderState = iota
	stateSynSent
	stateSynAcked
	stateFinSent
	stateFinAcked
)

// Sender emits segments (SYN/data/FIN/RST) from an outbound
// ByteStream, tracks an outstanding queue, and retransmits on a
// single exponential-backoff timer.
type Sender struct {
	cfg Config
	log *logrus.Entry

	stream *stream.ByteStream
	isn    seqno.Wrapping

	nextSeqno   uint64
	outstanding outstandingQueue
	timer       timer

	peerWindow uint16
	finSent    bool

	consecutiveRetransmissions uint32

	outbox []Segment
}

// NewSender builds a Sender over a fresh outbound ByteStream per cfg.
func NewSender(cfg Config, log *logrus.Entry) *Sender {
	cfg = cfg.withDefaults()
	if log == nil {
		log = nopLogger
	}
	isn := cfg.FixedISN
	s := &Sender{
		cfg:        cfg,
		log:        log,
		stream:     stream.NewByteStream(cfg.Capacity),
		peerWindow: 1, // matches the original sponge lab's default before any ACK is seen
	}
	if isn != nil {
		s.isn = *isn
	} else if cfg.SequenceNumberFactory != nil {
		s.isn = cfg.SequenceNumberFactory()
	} else {
		s.isn = randomISN()
	}
	return s
}

func randomISN() seqno.Wrapping {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return seqno.Wrapping(binary.BigEndian.Uint32(b[:]))
}

// Stream exposes the outbound ByteStream for application writes.
func (s *Sender) Stream() *stream.ByteStream { return s.stream }

// ISN returns the sender's initial sequence number.
func (s *Sender) ISN() seqno.Wrapping { return s.isn }

// state derives the sender's sub-state purely from nextSeqno, the
// outbound stream, and the outstanding queue, per spec §4.5. It is
// never stored directly.
func (s *Sender) state() senderState {
	switch {
	case s.nextSeqno == 0:
		return stateClosed
	case s.nextSeqno == s.outstanding.bytesInFlight():
		// nothing ever acked yet: only the just-sent SYN is outstanding
		return stateSynSent
	case !s.finSent:
		return stateSynAcked
	case !s.outstanding.empty():
		return stateFinSent
	default:
		return stateFinAcked
	}
}

// BytesInFlight sums the sequence-space length of every outstanding
// segment.
func (s *Sender) BytesInFlight() uint64 { return s.outstanding.bytesInFlight() }

// ConsecutiveRetransmissions is the current retransmission-exhaustion
// counter, reset whenever new data is acked.
func (s *Sender) ConsecutiveRetransmissions() uint32 { return s.consecutiveRetransmissions }

// Segments drains and returns every segment queued for transmission
// since the last call.
func (s *Sender) Segments() []Segment {
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *Sender) enqueue(seg Segment) {
	s.outbox = append(s.outbox, seg)
}

// FillWindow emits as many segments as the effective peer window
// currently allows, per spec §4.5.
func (s *Sender) FillWindow() {
	effectiveWindow := uint64(s.peerWindow)
	if effectiveWindow == 0 {
		effectiveWindow = 1
	}

	inFlight := s.outstanding.bytesInFlight()
	if inFlight >= effectiveWindow {
		return
	}
	remaining := effectiveWindow - inFlight

	for remaining > 0 {
		seg := Segment{Seqno: seqno.Wrap(s.nextSeqno, s.isn)}

		if s.state() == stateClosed {
			seg.Syn = true
		}

		payloadBudget := remaining
		if seg.Syn {
			payloadBudget--
		}
		payloadLen := payloadBudget
		if payloadLen > MaxPayloadSize {
			payloadLen = MaxPayloadSize
		}
		if uint64(s.stream.BufferSize()) < payloadLen {
			payloadLen = uint64(s.stream.BufferSize())
		}
		if payloadLen > 0 {
			seg.Payload = s.stream.Read(int(payloadLen))
		}

		consumedSoFar := uint64(len(seg.Payload))
		if seg.Syn {
			consumedSoFar++
		}
		if s.state() == stateSynAcked && s.stream.Eof() && remaining > consumedSoFar {
			seg.Fin = true
		}

		if seg.LengthInSequenceSpace() == 0 {
			break
		}

		s.enqueue(seg)
		s.outstanding.push(seg, s.nextSeqno)
		if !s.timer.active {
			s.timer.start(s.cfg.RetransmissionTimeout)
		}
		if seg.Fin {
			s.finSent = true
		}

		s.nextSeqno += seg.LengthInSequenceSpace()
		remaining -= seg.LengthInSequenceSpace()
	}
}

// AckReceived processes an incoming (ackno, windowSize) pair: retires
// fully-covered outstanding segments, resets/stops the timer, and
// tries to push more data under the newly-advertised window.
func (s *Sender) AckReceived(ackno seqno.Wrapping, windowSize uint16) {
	s.peerWindow = windowSize

	absAck := seqno.Unwrap(ackno, s.isn, s.nextSeqno)
	if absAck > s.nextSeqno {
		return // impossible ack: silently dropped, never fatal
	}

	removed := false
	for {
		head, ok := s.outstanding.front()
		if !ok {
			break
		}
		if absAck < head.start+head.ln {
			break // partial cover does not remove the segment
		}
		s.outstanding.popFront()
		removed = true
	}

	if removed {
		s.consecutiveRetransmissions = 0
		if s.outstanding.empty() {
			s.timer.stop()
		} else {
			s.timer.start(s.cfg.RetransmissionTimeout)
		}
	}

	s.FillWindow()
}

// Tick advances the retransmission timer by elapsedMs. On expiry it
// re-enqueues the oldest outstanding segment, backs off and counts
// the retransmission unless the peer is currently advertising a zero
// window (a persistence probe is not a congestion signal).
func (s *Sender) Tick(elapsedMs uint64) {
	if !s.timer.active {
		return
	}

	if s.timer.tick(elapsedMs) {
		head, ok := s.outstanding.front()
		if !ok {
			return
		}

		s.enqueue(head.seg)

		timeout := s.timer.initialMs
		if s.peerWindow > 0 {
			timeout *= 2
			s.consecutiveRetransmissions++
			s.log.WithFields(logrus.Fields{
				"seqno":   uint32(head.seg.Seqno),
				"timeout": timeout,
				"retx":    s.consecutiveRetransmissions,
			}).Debug("retransmitting segment, backing off RTO")
		} else {
			s.log.WithField("seqno", uint32(head.seg.Seqno)).Debug("retransmitting zero-window probe")
		}
		s.timer.start(timeout)
	}
}

// SendEmptySegment queues a bare segment (optionally RST-flagged) not
// tracked in the outstanding queue, used purely to carry an ACK or an
// abortive reset.
func (s *Sender) SendEmptySegment(rst bool) {
	s.enqueue(Segment{Seqno: seqno.Wrap(s.nextSeqno, s.isn), Rst: rst})
}
