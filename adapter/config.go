package adapter

// Config holds the carrier settings needed to run a connection over a
// real network, the way the teacher's demo programs hardcode
// sender/receiver addresses and ports. It does not embed tcp.Config;
// protocol tunables are passed to tcp.NewConnection separately.
type Config struct {
	LocalAddr  string
	RemoteAddr string

	// UseNoise wraps the UDP carrier in a NoiseCarrier when true.
	UseNoise bool
	// Initiator selects which side of the Noise XX handshake this
	// carrier plays; ignored when UseNoise is false.
	Initiator bool
}

// BuildCarrier constructs the configured SegmentCarrier stack: a
// UDPCarrier, optionally wrapped in a NoiseCarrier.
func (c Config) BuildCarrier() SegmentCarrier {
	udp := &UDPCarrier{LocalAddr: c.LocalAddr, RemoteAddr: c.RemoteAddr}
	if !c.UseNoise {
		return udp
	}
	return &NoiseCarrier{Inner: udp, Initiator: c.Initiator}
}
