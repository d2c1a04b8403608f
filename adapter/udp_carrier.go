package adapter

import (
	"net"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gotcp-project/gotcp-engine/tcp"
)

// maxDatagramSize bounds a single read; MaxPayloadSize plus the wire
// header plus slack for a path MTU well above what we ever send.
const maxDatagramSize = tcp.MaxPayloadSize + wireHeaderSize + 64

// UDPCarrier is a SegmentCarrier over a single UDP socket used for both
// sending and receiving, adapted from the teacher's udpConnector.
// Unlike the teacher's fixed "localhost" receiver, the local address is
// configurable so the demo can run across real hosts.
type UDPCarrier struct {
	LocalAddr  string
	RemoteAddr string
	Log        *logrus.Entry

	codec Codec
	conn  *net.UDPConn
}

// Open binds the local socket; WriteSegment resolves RemoteAddr on each
// call. A UDPCarrier always reads and writes through the same socket,
// unlike the teacher's dial/listen pair, since net.UDPConn already
// supports addressed writes and unconnected reads from one fd.
func (c *UDPCarrier) Open() error {
	local, err := net.ResolveUDPAddr("udp", c.LocalAddr)
	if err != nil {
		return errors.Wrap(err, "adapter: resolve local UDP address")
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return errors.Wrap(err, "adapter: listen on UDP socket")
	}
	c.conn = conn
	if c.Log != nil {
		c.Log.WithField("local", c.LocalAddr).Info("UDP carrier opened")
	}
	return nil
}

// Close releases the underlying socket.
func (c *UDPCarrier) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// WriteSegment encodes seg and sends it to RemoteAddr.
func (c *UDPCarrier) WriteSegment(seg tcp.Segment) error {
	remote, err := net.ResolveUDPAddr("udp", c.RemoteAddr)
	if err != nil {
		return errors.Wrap(err, "adapter: resolve remote UDP address")
	}
	buf := c.codec.Encode(seg)
	n, err := c.conn.WriteToUDP(buf, remote)
	if err != nil {
		return errors.Wrap(err, "adapter: write UDP datagram")
	}
	if c.Log != nil {
		c.Log.WithFields(logrus.Fields{"bytes": n, "syn": seg.Syn, "fin": seg.Fin, "rst": seg.Rst}).Debug("segment sent")
	}
	return nil
}

// ReadSegment blocks for the next datagram and decodes it.
func (c *UDPCarrier) ReadSegment() (tcp.Segment, error) {
	buf := make([]byte, maxDatagramSize)
	n, _, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		return tcp.Segment{}, errors.Wrap(err, "adapter: read UDP datagram")
	}
	seg, err := c.codec.Decode(buf[:n])
	if err != nil {
		return tcp.Segment{}, err
	}
	if c.Log != nil {
		c.Log.WithFields(logrus.Fields{"bytes": n, "syn": seg.Syn, "fin": seg.Fin, "rst": seg.Rst}).Debug("segment received")
	}
	return seg, nil
}
