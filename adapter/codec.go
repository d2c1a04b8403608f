package adapter

import (
	"encoding/binary"

	"github.com/google/netstack/tcpip/header"
	"github.com/pkg/errors"

	"github.com/gotcp-project/gotcp-engine/internal/seqno"
	"github.com/gotcp-project/gotcp-engine/tcp"
)

func seqnoFromWire(n uint32) seqno.Wrapping { return seqno.Wrapping(n) }

// wireHeaderSize is seqno(4) + ackno(4) + flags(1) + window(2) + payload
// length(4).
const wireHeaderSize = 4 + 4 + 1 + 2 + 4

// Codec serializes tcp.Segment to and from wire bytes. The flag byte
// reuses the TCP flag-bit constants from google/netstack's header
// package rather than a bespoke bitmask, even though the rest of the
// framing (no ports, no checksum, explicit length prefix) is specific
// to this engine.
type Codec struct{}

// Encode returns the wire representation of seg.
func (Codec) Encode(seg tcp.Segment) []byte {
	buf := make([]byte, wireHeaderSize+len(seg.Payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(seg.Seqno))
	binary.BigEndian.PutUint32(buf[4:8], uint32(seg.Ackno))
	buf[8] = encodeFlags(seg)
	binary.BigEndian.PutUint16(buf[9:11], seg.Window)
	binary.BigEndian.PutUint32(buf[11:15], uint32(len(seg.Payload)))
	copy(buf[wireHeaderSize:], seg.Payload)
	return buf
}

// Decode parses a wire-format datagram back into a tcp.Segment.
func (Codec) Decode(raw []byte) (tcp.Segment, error) {
	if len(raw) < wireHeaderSize {
		return tcp.Segment{}, errors.Errorf("adapter: short segment: %d bytes", len(raw))
	}
	payloadLen := binary.BigEndian.Uint32(raw[11:15])
	if int(payloadLen) != len(raw)-wireHeaderSize {
		return tcp.Segment{}, errors.Errorf("adapter: payload length mismatch: header says %d, have %d", payloadLen, len(raw)-wireHeaderSize)
	}

	seg := tcp.Segment{
		Seqno:  seqnoFromWire(binary.BigEndian.Uint32(raw[0:4])),
		Ackno:  seqnoFromWire(binary.BigEndian.Uint32(raw[4:8])),
		Window: binary.BigEndian.Uint16(raw[9:11]),
	}
	decodeFlags(raw[8], &seg)
	if payloadLen > 0 {
		seg.Payload = append([]byte(nil), raw[wireHeaderSize:]...)
	}
	return seg, nil
}

func encodeFlags(seg tcp.Segment) byte {
	var flags byte
	if seg.Fin {
		flags |= header.TCPFlagFin
	}
	if seg.Syn {
		flags |= header.TCPFlagSyn
	}
	if seg.Rst {
		flags |= header.TCPFlagRst
	}
	if seg.Ack {
		flags |= header.TCPFlagAck
	}
	return flags
}

func decodeFlags(flags byte, seg *tcp.Segment) {
	seg.Fin = flags&header.TCPFlagFin != 0
	seg.Syn = flags&header.TCPFlagSyn != 0
	seg.Rst = flags&header.TCPFlagRst != 0
	seg.Ack = flags&header.TCPFlagAck != 0
}
