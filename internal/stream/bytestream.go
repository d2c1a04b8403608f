package stream

// ByteStream is a bounded, single-producer single-consumer byte queue
// with an input-closed flag. It is the flow-controlled buffer shared
// by the reassembler (write side) and the sender (read side).
//
// Invariant: bytesWritten == bytesRead + len(buf) at all times.
type ByteStream struct {
	buf        []byte
	capacity   int
	bytesWrite uint64
	bytesRead  uint64
	inputEnded bool
	errored    bool
}

// NewByteStream returns a ByteStream with the given fixed capacity.
func NewByteStream(capacity int) *ByteStream {
	return &ByteStream{
		buf:      make([]byte, 0, capacity),
		capacity: capacity,
	}
}

// Write appends the prefix of data that fits in the remaining
// capacity and returns the number of bytes actually written. A
// stream whose input has ended silently discards all writes.
func (s *ByteStream) Write(data []byte) int {
	if s.inputEnded {
		return 0
	}
	n := min(len(data), s.capacity-len(s.buf))
	s.buf = append(s.buf, data[:n]...)
	s.bytesWrite += uint64(n)
	return n
}

// PeekOutput returns a copy of the first min(n, buffer_size) bytes
// without removing them.
func (s *ByteStream) PeekOutput(n int) []byte {
	n = min(n, len(s.buf))
	out := make([]byte, n)
	copy(out, s.buf[:n])
	return out
}

// PopOutput removes the first min(n, buffer_size) bytes from the
// front of the stream.
func (s *ByteStream) PopOutput(n int) {
	n = min(n, len(s.buf))
	s.buf = s.buf[n:]
	s.bytesRead += uint64(n)
}

// Read is PeekOutput followed by PopOutput.
func (s *ByteStream) Read(n int) []byte {
	out := s.PeekOutput(n)
	s.PopOutput(len(out))
	return out
}

// EndInput marks the input side closed. Idempotent.
func (s *ByteStream) EndInput() { s.inputEnded = true }

// InputEnded reports whether EndInput has been called.
func (s *ByteStream) InputEnded() bool { return s.inputEnded }

// Eof reports whether input has ended and the buffer has drained.
func (s *ByteStream) Eof() bool { return s.inputEnded && len(s.buf) == 0 }

// BufferSize is the number of bytes currently buffered.
func (s *ByteStream) BufferSize() int { return len(s.buf) }

// Empty reports whether the buffer currently holds no bytes.
func (s *ByteStream) Empty() bool { return len(s.buf) == 0 }

// BytesWritten is the total number of bytes ever written.
func (s *ByteStream) BytesWritten() uint64 { return s.bytesWrite }

// BytesRead is the total number of bytes ever popped.
func (s *ByteStream) BytesRead() uint64 { return s.bytesRead }

// RemainingCapacity is the number of bytes that can still be written.
func (s *ByteStream) RemainingCapacity() int { return s.capacity - len(s.buf) }

// Capacity returns the fixed capacity the stream was created with.
func (s *ByteStream) Capacity() int { return s.capacity }

// SetError marks the stream as torn down (e.g. by a remote RST). The
// flag is sticky and observable via Error.
func (s *ByteStream) SetError() { s.errored = true }

// Error reports whether SetError has been called.
func (s *ByteStream) Error() bool { return s.errored }

