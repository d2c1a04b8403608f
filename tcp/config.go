package tcp

import "github.com/gotcp-project/gotcp-engine/internal/seqno"

// Config is the TcpConfig of §6: per-connection tunables with the
// spec's defaults, applied lazily the way the teacher's goBackNArq
// defaults its window size on Open.
type Config struct {
	// Capacity is the per-direction ByteStream capacity in bytes.
	Capacity int
	// RetransmissionTimeout is the initial RTO in milliseconds.
	RetransmissionTimeout uint64
	// FixedISN forces the sender's ISN when set; otherwise the ISN is
	// drawn from SequenceNumberFactory (or crypto/rand if nil).
	FixedISN *seqno.Wrapping
	// MaxRetransmissions is the consecutive-retransmission cap before
	// the connection aborts with an RST.
	MaxRetransmissions uint32
	// SequenceNumberFactory generates a random ISN; overridable for
	// deterministic tests.
	SequenceNumberFactory func() seqno.Wrapping
	// LingerAfterStreamsFinish controls whether the connection enters
	// TIME_WAIT (true, default) or closes immediately once both
	// streams finish (false). nil means the default (true); use
	// LingerPtr to build a non-default value.
	LingerAfterStreamsFinish *bool
}

// LingerPtr is a small helper for setting Config.LingerAfterStreamsFinish
// to an explicit value, since Go has no inline address-of for bool
// literals.
func LingerPtr(v bool) *bool { return &v }

// DefaultConfig returns a Config with the spec's default values.
func DefaultConfig() Config {
	return Config{
		Capacity:                 64000,
		RetransmissionTimeout:    1000,
		MaxRetransmissions:       8,
		LingerAfterStreamsFinish: LingerPtr(true),
	}
}

func (c Config) lingerDefault() bool {
	if c.LingerAfterStreamsFinish == nil {
		return true
	}
	return *c.LingerAfterStreamsFinish
}

func (c Config) withDefaults() Config {
	if c.Capacity == 0 {
		c.Capacity = 64000
	}
	if c.RetransmissionTimeout == 0 {
		c.RetransmissionTimeout = 1000
	}
	if c.MaxRetransmissions == 0 {
		c.MaxRetransmissions = 8
	}
	return c
}
