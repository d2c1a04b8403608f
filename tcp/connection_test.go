package tcp

import (
	"testing"

	"github.com/gotcp-project/gotcp-engine/internal/seqno"
	"github.com/stretchr/testify/assert"
)

func zeroISN() *seqno.Wrapping {
	w := seqno.Wrapping(0)
	return &w
}

func newTestConnection() *Connection {
	cfg := DefaultConfig()
	cfg.FixedISN = zeroISN()
	return NewConnection(cfg, nil)
}

func TestConnectionThreeWayHandshake(t *testing.T) {
	client := newTestConnection()
	client.Connect()

	segs := client.Outbound()
	assert.Len(t, segs, 1)
	assert.True(t, segs[0].Syn)
	assert.Equal(t, seqno.Wrapping(0), segs[0].Seqno)
	assert.Empty(t, segs[0].Payload)

	client.SegmentReceived(Segment{
		Syn: true, Ack: true, Seqno: 1000, Ackno: 1, Window: 4096,
	})

	resp := client.Outbound()
	assert.Len(t, resp, 1)
	assert.True(t, resp[0].Ack)
	assert.Equal(t, seqno.Wrapping(1001), resp[0].Ackno)
	assert.Equal(t, seqno.Wrapping(1), resp[0].Seqno)
	assert.True(t, client.Active())
}

func TestConnectionWriteAfterEstablished(t *testing.T) {
	client := newTestConnection()
	client.Connect()
	client.Outbound()
	client.SegmentReceived(Segment{Syn: true, Ack: true, Seqno: 1000, Ackno: 1, Window: 4096})
	client.Outbound()

	n := client.Write([]byte("payload"))
	assert.Equal(t, 7, n)
	segs := client.Outbound()
	assert.Len(t, segs, 1)
	assert.Equal(t, []byte("payload"), segs[0].Payload)
}

func TestConnectionPassiveCloserSkipsLinger(t *testing.T) {
	server := newTestConnection()
	// peer connects
	server.SegmentReceived(Segment{Syn: true, Seqno: 500})
	server.Outbound()

	// peer finishes first
	server.SegmentReceived(Segment{Seqno: 501, Fin: true, Ack: true, Ackno: 1})
	server.Outbound()

	assert.True(t, server.Active())

	server.EndInputStream()
	outgoing := server.Outbound()
	var finSeg *Segment
	for i := range outgoing {
		if outgoing[i].Fin {
			finSeg = &outgoing[i]
		}
	}
	if finSeg == nil {
		t.Fatalf("expected a FIN segment once input ended")
	}

	ackForFin := seqno.Wrap(seqno.Unwrap(finSeg.Seqno, server.sender.ISN(), server.sender.nextSeqno)+finSeg.LengthInSequenceSpace(), server.sender.ISN())
	server.SegmentReceived(Segment{Ack: true, Ackno: ackForFin, Seqno: 502, Window: 4096})

	assert.False(t, server.Active())
	assert.False(t, server.Reset())
}

func TestConnectionRemoteRstMarksErrorAndInactive(t *testing.T) {
	c := newTestConnection()
	c.Connect()
	c.Outbound()
	c.SegmentReceived(Segment{Rst: true})
	assert.False(t, c.Active())
	assert.True(t, c.Reset())
	assert.True(t, c.Sender().Stream().Error())
	assert.True(t, c.Receiver().Stream().Error())
}

func TestConnectionRetransmissionExhaustionAborts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FixedISN = zeroISN()
	cfg.RetransmissionTimeout = 10
	c := NewConnection(cfg, nil)
	c.Connect()
	c.Outbound()

	for i := 0; i < 10; i++ {
		c.Tick(10 * (1 << uint(min(i, 20))))
	}

	assert.True(t, c.Reset())
	assert.False(t, c.Active())
}
