package tcp

import (
	"testing"

	"github.com/gotcp-project/gotcp-engine/internal/seqno"
	"github.com/stretchr/testify/assert"
)

func fixedISNConfig(isn uint32) Config {
	cfg := DefaultConfig()
	w := seqno.Wrapping(isn)
	cfg.FixedISN = &w
	return cfg
}

func TestSenderEmitsSynOnFirstFillWindow(t *testing.T) {
	s := NewSender(fixedISNConfig(0), nil)
	s.FillWindow()
	segs := s.Segments()
	assert.Len(t, segs, 1)
	assert.True(t, segs[0].Syn)
	assert.Equal(t, seqno.Wrapping(0), segs[0].Seqno)
	assert.Equal(t, uint64(1), s.BytesInFlight())
}

func TestSenderAckAdvancesAndOpensWindow(t *testing.T) {
	s := NewSender(fixedISNConfig(0), nil)
	s.FillWindow()
	s.Segments()

	s.Stream().Write([]byte("hello"))
	s.AckReceived(seqno.Wrapping(1), 4096)

	assert.Equal(t, uint64(5), s.BytesInFlight()) // syn acked, 5 bytes now in flight
	segs := s.Segments()
	assert.Len(t, segs, 1)
	assert.Equal(t, []byte("hello"), segs[0].Payload)
	assert.Equal(t, uint32(0), s.ConsecutiveRetransmissions())
}

func TestSenderRetransmissionBackoff(t *testing.T) {
	cfg := fixedISNConfig(0)
	cfg.RetransmissionTimeout = 1000
	s := NewSender(cfg, nil)
	s.FillWindow()
	s.Segments()
	s.AckReceived(seqno.Wrapping(1), 4096)
	s.Stream().Write([]byte("0123456789"))
	s.FillWindow()
	s.Segments()

	s.Tick(999)
	assert.Empty(t, s.Segments())

	s.Tick(2)
	retransmitted := s.Segments()
	assert.Len(t, retransmitted, 1)
	assert.Equal(t, uint32(1), s.ConsecutiveRetransmissions())

	s.Tick(1999)
	assert.Empty(t, s.Segments())
	s.Tick(1)
	retransmitted = s.Segments()
	assert.Len(t, retransmitted, 1)
	assert.Equal(t, uint32(2), s.ConsecutiveRetransmissions())

	s.AckReceived(seqno.Wrapping(11), 4096)
	assert.Equal(t, uint32(0), s.ConsecutiveRetransmissions())
	assert.Equal(t, uint64(0), s.BytesInFlight())
}

func TestSenderZeroWindowProbeDoesNotBackOff(t *testing.T) {
	cfg := fixedISNConfig(0)
	cfg.RetransmissionTimeout = 1000
	s := NewSender(cfg, nil)
	s.FillWindow()
	s.Segments()
	s.AckReceived(seqno.Wrapping(1), 0)

	s.Stream().Write([]byte("x"))
	s.FillWindow()
	segs := s.Segments()
	assert.Len(t, segs, 1)
	assert.Equal(t, []byte("x"), segs[0].Payload)

	s.Tick(1000)
	retransmitted := s.Segments()
	assert.Len(t, retransmitted, 1)
	assert.Equal(t, uint32(0), s.ConsecutiveRetransmissions())

	s.Tick(1000)
	retransmitted = s.Segments()
	assert.Len(t, retransmitted, 1)
	assert.Equal(t, uint32(0), s.ConsecutiveRetransmissions())
}

func TestSenderBytesInFlightInvariant(t *testing.T) {
	s := NewSender(fixedISNConfig(0), nil)
	s.FillWindow()
	s.Segments()
	s.Stream().Write(make([]byte, 10000))
	s.AckReceived(seqno.Wrapping(1), 4096)
	s.FillWindow()
	assert.LessOrEqual(t, s.BytesInFlight(), uint64(4096)+MaxPayloadSize)
}
