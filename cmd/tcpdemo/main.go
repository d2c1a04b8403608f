// Command tcpdemo drives a tcp.Connection across a real UDP socket,
// sending either a file or stdin to a peer instance of itself and
// reporting progress, in the spirit of the teacher's two-socket
// main.go demo and bjoern621-ChatProtoGol's file-transfer CLI.
package main

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/gotcp-project/gotcp-engine/adapter"
	"github.com/gotcp-project/gotcp-engine/tcp"
)

func main() {
	var (
		localAddr  = flag.String("local", "127.0.0.1:5000", "local UDP address to bind")
		remoteAddr = flag.String("remote", "127.0.0.1:5001", "remote UDP address to reach")
		listen     = flag.Bool("listen", false, "wait for the peer's SYN instead of sending one")
		noise      = flag.Bool("noise", false, "wrap the UDP carrier in a Noise-encrypted channel")
		inputPath  = flag.String("file", "", "file to send; defaults to stdin")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	carrierCfg := adapter.Config{
		LocalAddr:  *localAddr,
		RemoteAddr: *remoteAddr,
		UseNoise:   *noise,
		Initiator:  !*listen,
	}
	carrier := carrierCfg.BuildCarrier()
	if err := carrier.Open(); err != nil {
		fatalf("open carrier: %v", err)
	}
	defer carrier.Close()

	conn := tcp.NewConnection(tcp.DefaultConfig(), entry)

	pump := newSegmentPump(conn, carrier, entry)
	go pump.receiveLoop()
	go pump.tickLoop()

	if !*listen {
		colorstring.Println("[blue]connecting...[reset]")
		conn.Connect()
		pump.flushOutbound()
	} else {
		colorstring.Println("[blue]listening for a SYN...[reset]")
	}

	waitEstablished(conn)
	colorstring.Println("[green]connection established[reset]")

	input, closeInput := openInput(*inputPath)
	defer closeInput()

	if err := sendAll(conn, pump, input); err != nil {
		fatalf("send: %v", err)
	}
	conn.EndInputStream()
	pump.flushOutbound()

	colorstring.Println("[green]transfer complete[reset]")
}

// segmentPump is the goroutine boundary between the synchronous
// tcp.Connection and the blocking SegmentCarrier: one goroutine reads
// datagrams and feeds SegmentReceived, another ticks the retransmission
// timer, and the main goroutine drives Write/Outbound directly.
type segmentPump struct {
	conn    *tcp.Connection
	carrier adapter.SegmentCarrier
	log     *logrus.Entry
}

func newSegmentPump(conn *tcp.Connection, carrier adapter.SegmentCarrier, log *logrus.Entry) *segmentPump {
	return &segmentPump{conn: conn, carrier: carrier, log: log}
}

func (p *segmentPump) receiveLoop() {
	for {
		seg, err := p.carrier.ReadSegment()
		if err != nil {
			p.log.WithError(err).Warn("carrier read failed, stopping receive loop")
			return
		}
		p.conn.SegmentReceived(seg)
		p.flushOutbound()
		if !p.conn.Active() {
			return
		}
	}
}

func (p *segmentPump) tickLoop() {
	const tickInterval = 50 * time.Millisecond
	for range time.Tick(tickInterval) {
		if !p.conn.Active() {
			return
		}
		p.conn.Tick(uint64(tickInterval / time.Millisecond))
		p.flushOutbound()
	}
}

func (p *segmentPump) flushOutbound() {
	for _, seg := range p.conn.Outbound() {
		if err := p.carrier.WriteSegment(seg); err != nil {
			p.log.WithError(err).Warn("carrier write failed")
		}
	}
}

func waitEstablished(conn *tcp.Connection) {
	for {
		if _, ok := conn.Receiver().ISN(); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func sendAll(conn *tcp.Connection, pump *segmentPump, input io.Reader) error {
	bar := newProgressBar(input)
	buf := make([]byte, tcp.MaxPayloadSize)
	for {
		n, err := input.Read(buf)
		if n > 0 {
			written := 0
			for written < n {
				k := conn.Write(buf[written:n])
				if k == 0 {
					pump.flushOutbound()
					time.Sleep(5 * time.Millisecond)
					continue
				}
				written += k
				pump.flushOutbound()
			}
			if bar != nil {
				_ = bar.Add(n)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// newProgressBar renders a transfer bar when stdout is a real
// terminal, sized to the input file when its size is known and
// indeterminate otherwise; a non-TTY (e.g. piped into a log file) gets
// no bar at all instead of garbled escape codes.
func newProgressBar(input io.Reader) *progressbar.ProgressBar {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	f, ok := input.(*os.File)
	if !ok {
		return progressbar.DefaultBytes(-1, "sending")
	}
	info, err := f.Stat()
	if err != nil {
		return progressbar.DefaultBytes(-1, "sending")
	}
	return progressbar.DefaultBytes(info.Size(), "sending")
}

func openInput(path string) (io.Reader, func()) {
	if path == "" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		fatalf("open %s: %v", path, err)
	}
	return f, func() { _ = f.Close() }
}

func fatalf(format string, args ...interface{}) {
	colorstring.Printf("[red]error: "+format+"[reset]\n", args...)
	os.Exit(1)
}
