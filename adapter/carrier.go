// Package adapter wires a tcp.Connection to a real datagram transport.
// Everything in this package is optional with respect to the protocol
// engine: tcp.Connection never imports adapter, it only produces and
// consumes tcp.Segment values through Outbound/SegmentReceived.
package adapter

import "github.com/gotcp-project/gotcp-engine/tcp"

// SegmentCarrier sends and receives whole tcp.Segment values over some
// underlying transport. Implementations own framing and, if desired,
// encryption; the protocol engine never sees the wire format.
type SegmentCarrier interface {
	Open() error
	Close() error
	WriteSegment(seg tcp.Segment) error
	ReadSegment() (tcp.Segment, error)
}
