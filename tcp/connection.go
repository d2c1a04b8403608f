package tcp

import "github.com/sirupsen/logrus"

// maxRetransmissionsDefault backstops Config.MaxRetransmissions when a
// caller builds a Config{} by hand instead of starting from
// DefaultConfig().
const maxRetransmissionsDefault = 8

// Connection composes a Sender, a Receiver, and the bookkeeping that
// derives the ten-state TCP state machine (spec §4.6) from their
// sub-states, without ever storing that state explicitly.
type Connection struct {
	cfg Config
	log *logrus.Entry

	sender   *Sender
	receiver *Receiver

	timeSinceLastSegmentMs uint64
	lingerAfterFinish      bool

	active bool
	rst    bool

	finishLogged bool
	outbound     []Segment
}

// NewConnection builds an idle (CLOSED) connection. Callers should
// start from DefaultConfig() and override only what they need.
func NewConnection(cfg Config, log *logrus.Entry) *Connection {
	cfg = cfg.withDefaults()
	if log == nil {
		log = nopLogger
	}
	return &Connection{
		cfg:               cfg,
		log:               log,
		sender:            NewSender(cfg, log),
		receiver:          NewReceiver(cfg.Capacity),
		lingerAfterFinish: cfg.lingerDefault(),
		active:            true,
	}
}

// Sender exposes the sender half for callers that need direct access
// to its outbound ByteStream.
func (c *Connection) Sender() *Sender { return c.sender }

// Receiver exposes the receiver half for callers that need direct
// access to its inbound ByteStream.
func (c *Connection) Receiver() *Receiver { return c.receiver }

// Active reports whether the connection is still considered live.
func (c *Connection) Active() bool { return c.active }

// Reset reports whether the connection tore down via RST (local or
// remote), as opposed to a clean close.
func (c *Connection) Reset() bool { return c.rst }

// Connect emits the initial SYN. Legal only on a freshly-built,
// never-connected Connection.
func (c *Connection) Connect() {
	c.sender.FillWindow()
	c.pushPending()
}

// Write appends data to the sender's outbound stream and attempts to
// push it immediately, returning the number of bytes accepted.
func (c *Connection) Write(data []byte) int {
	n := c.sender.Stream().Write(data)
	c.sender.FillWindow()
	c.pushPending()
	return n
}

// EndInputStream signals that the application has no more data to
// send; once the sender drains, FillWindow will emit the FIN.
func (c *Connection) EndInputStream() {
	c.sender.Stream().EndInput()
	c.sender.FillWindow()
	c.pushPending()
}

// Tick advances both the sender's retransmission timer and the
// connection's inactivity clock, handling retransmission-exhaustion
// RST and TIME_WAIT expiry.
func (c *Connection) Tick(elapsedMs uint64) {
	if !c.active {
		return
	}

	c.sender.Tick(elapsedMs)
	c.timeSinceLastSegmentMs += elapsedMs

	maxRetx := c.cfg.MaxRetransmissions
	if maxRetx == 0 {
		maxRetx = maxRetransmissionsDefault
	}
	if c.sender.ConsecutiveRetransmissions() > maxRetx {
		c.abortWithReset()
		return
	}

	if c.inTimeWait() && c.timeSinceLastSegmentMs >= 10*c.cfg.RetransmissionTimeout {
		c.log.Debug("TIME_WAIT expired, closing")
		c.active = false
	}
}

// SegmentReceived is the network-facing entry point: validate, hand
// off to the receiver and sender, and ensure the peer gets an ACK
// whenever this segment consumed sequence space.
func (c *Connection) SegmentReceived(seg Segment) {
	c.timeSinceLastSegmentMs = 0

	if seg.Rst {
		c.log.Warn("received RST, tearing down connection")
		c.sender.Stream().SetError()
		c.receiver.Stream().SetError()
		c.sender.timer.stop()
		c.active = false
		c.rst = true
		return
	}

	_, haveISN := c.receiver.ISN()
	if !haveISN && !seg.Syn {
		return // LISTEN state: only a SYN may open a connection
	}

	peerFinBefore := c.receiver.Stream().InputEnded()

	c.receiver.SegmentReceived(seg)

	if seg.Ack {
		c.sender.AckReceived(seg.Ackno, seg.Window)
	}

	if !peerFinBefore && c.receiver.Stream().InputEnded() && !c.sender.Stream().InputEnded() {
		// peer closed first: we are the passive closer, skip TIME_WAIT
		c.lingerAfterFinish = false
	}

	keepAlive := false
	if ackno, ok := c.receiver.Ackno(); ok {
		keepAlive = uint32(seg.Seqno) == uint32(ackno)-1
	}

	if seg.LengthInSequenceSpace() > 0 || keepAlive {
		before := len(c.sender.outbox)
		c.sender.FillWindow()
		if len(c.sender.outbox) == before {
			c.sender.SendEmptySegment(false)
		}
	}

	c.pushPending()
	c.maybeFinishCleanly()
}

// pushPending drains every segment the sender has queued, stamps it
// with the receiver's current ack/window, and moves it onto the
// connection's outbound queue for the datagram-carrier collaborator.
func (c *Connection) pushPending() {
	for _, seg := range c.sender.Segments() {
		ackno, ok := c.receiver.Ackno()
		seg.Ack = ok
		if ok {
			seg.Ackno = ackno
		}
		seg.Window = c.receiver.WindowSize()
		c.outbound = append(c.outbound, seg)
	}
}

// Outbound drains every fully-stamped segment queued for delivery to
// the datagram carrier.
func (c *Connection) Outbound() []Segment {
	out := c.outbound
	c.outbound = nil
	return out
}

func (c *Connection) inTimeWait() bool {
	return c.doneWithStreams() && c.lingerAfterFinish
}

func (c *Connection) doneWithStreams() bool {
	return c.receiver.Stream().Eof() &&
		c.sender.Stream().Eof() &&
		c.sender.BytesInFlight() == 0 &&
		c.sender.state() == stateFinAcked
}

func (c *Connection) maybeFinishCleanly() {
	if !c.doneWithStreams() {
		return
	}
	if !c.finishLogged {
		c.finishLogged = true
		if c.lingerAfterFinish {
			c.log.Debug("both streams finished, entering TIME_WAIT")
		} else {
			c.log.Debug("both streams finished, closing without TIME_WAIT")
		}
	}
	if !c.lingerAfterFinish {
		c.active = false
	}
}

// abortWithReset tears the connection down abortively: clears the
// outstanding queue, emits an RST, and marks both streams with error.
func (c *Connection) abortWithReset() {
	c.log.WithField("retx", c.sender.ConsecutiveRetransmissions()).
		Warn("retransmission attempts exhausted, aborting with RST")
	c.sender.outstanding.clear()
	c.sender.SendEmptySegment(true)
	c.pushPending()
	c.sender.Stream().SetError()
	c.receiver.Stream().SetError()
	c.rst = true
	c.active = false
}
