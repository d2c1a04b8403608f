package tcp

import "github.com/pkg/errors"

// ErrConnectionReset is the error value for a connection torn down by
// a remote RST or retransmission exhaustion; no package in this module
// returns it at present. Per spec §7 the core itself never returns this from
// SegmentReceived/Tick/Write — it only ever flips the Error bit on
// the affected streams and clears Active(). Collaborators that need
// an error value (e.g. a socket façade blocking on Read) wrap it with
// errors.Wrap to attach call-site context.
var ErrConnectionReset = errors.New("tcp: connection reset")

// ErrIllegalState flags an out-of-contract API call (connect twice,
// write before the connection is established). The core asserts its
// own invariants; collaborators that expose these operations to less
// disciplined callers should check state first and wrap this error
// when they can't.
var ErrIllegalState = errors.New("tcp: illegal state for operation")
