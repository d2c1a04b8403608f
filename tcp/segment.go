package tcp

import "github.com/gotcp-project/gotcp-engine/internal/seqno"

// MaxPayloadSize bounds the payload carried by a single segment.
const MaxPayloadSize = 1460

// Segment is a logical TCP segment as the engine consumes and
// produces it: ports and checksum are stamped by the collaborator
// (§6 of the design), the fields below are everything the core cares
// about.
type Segment struct {
	Seqno      seqno.Wrapping
	Ackno      seqno.Wrapping
	Syn        bool
	Ack        bool
	Fin        bool
	Rst        bool
	Window     uint16
	Payload    []byte
}

// LengthInSequenceSpace is the number of absolute-sequence-number
// positions this segment occupies: one for SYN, one per payload byte,
// one for FIN.
func (s Segment) LengthInSequenceSpace() uint64 {
	n := uint64(len(s.Payload))
	if s.Syn {
		n++
	}
	if s.Fin {
		n++
	}
	return n
}
