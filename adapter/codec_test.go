package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotcp-project/gotcp-engine/internal/seqno"
	"github.com/gotcp-project/gotcp-engine/tcp"
)

func TestCodecRoundTripsFlagsAndPayload(t *testing.T) {
	seg := tcp.Segment{
		Seqno:   seqno.Wrapping(42),
		Ackno:   seqno.Wrapping(1001),
		Syn:     true,
		Ack:     true,
		Window:  4096,
		Payload: []byte("hello, wire"),
	}

	var c Codec
	raw := c.Encode(seg)
	got, err := c.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, seg.Seqno, got.Seqno)
	assert.Equal(t, seg.Ackno, got.Ackno)
	assert.Equal(t, seg.Syn, got.Syn)
	assert.Equal(t, seg.Ack, got.Ack)
	assert.False(t, got.Fin)
	assert.False(t, got.Rst)
	assert.Equal(t, seg.Window, got.Window)
	assert.Equal(t, seg.Payload, got.Payload)
}

func TestCodecRejectsTruncatedHeader(t *testing.T) {
	var c Codec
	_, err := c.Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCodecRejectsLengthMismatch(t *testing.T) {
	var c Codec
	raw := c.Encode(tcp.Segment{Payload: []byte("abc")})
	raw = raw[:len(raw)-1] // truncate one payload byte
	_, err := c.Decode(raw)
	assert.Error(t, err)
}

func TestCodecEmptySegmentHasNoPayload(t *testing.T) {
	var c Codec
	raw := c.Encode(tcp.Segment{Fin: true})
	got, err := c.Decode(raw)
	require.NoError(t, err)
	assert.True(t, got.Fin)
	assert.Empty(t, got.Payload)
}
