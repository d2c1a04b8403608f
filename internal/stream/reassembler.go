package stream

// interval is a half-open byte range [start, end) held in the
// reassembly window, not yet committed to the output stream.
type interval struct {
	start int64
	data  []byte
}

func (iv interval) end() int64 { return iv.start + int64(len(iv.data)) }

// Reassembler accepts out-of-order substrings indexed by stream
// offset, commits contiguous prefixes into an output ByteStream, and
// tracks the distinguished end-of-stream marker. It holds its output
// stream by composition, per spec §9: callers reach the assembled
// bytes only through Output().
type Reassembler struct {
	output   *ByteStream
	window   []interval // kept sorted and non-overlapping by start
	eofKnown bool
	eofIndex int64
}

// NewReassembler returns a Reassembler that commits into a freshly
// created ByteStream of the given capacity.
func NewReassembler(capacity int) *Reassembler {
	return &Reassembler{output: NewByteStream(capacity)}
}

// Output exposes the inner ByteStream for reads.
func (r *Reassembler) Output() *ByteStream { return r.output }

// PushSubstring merges data starting at the given stream index into
// the reassembly window, drains any newly contiguous prefix into the
// output stream, and records eofIndex if eof is set and the tail of
// this substring falls within the acceptable window.
func (r *Reassembler) PushSubstring(data []byte, index int64, eof bool) {
	if len(data) == 0 && !eof {
		return
	}

	firstUnassembled := int64(r.output.BytesWritten())
	firstUnacceptable := int64(r.output.BytesRead()) + int64(r.output.Capacity())

	if len(data) == 0 && eof {
		if index >= firstUnassembled && index <= firstUnacceptable {
			r.eofKnown = true
			r.eofIndex = index
		}
		r.drain()
		return
	}

	start := index
	end := index + int64(len(data))

	clampedStart := start
	if clampedStart < firstUnassembled {
		clampedStart = firstUnassembled
	}
	clampedEnd := end
	if clampedEnd > firstUnacceptable {
		clampedEnd = firstUnacceptable
	}

	if eof && end >= firstUnassembled && end <= firstUnacceptable {
		r.eofKnown = true
		r.eofIndex = end
	}

	if clampedStart < clampedEnd {
		r.insert(interval{
			start: clampedStart,
			data:  append([]byte(nil), data[clampedStart-start:clampedEnd-start]...),
		})
	}

	r.drain()
}

// insert merges iv into the sorted, non-overlapping window,
// overwriting any previously stored bytes at the same positions (they
// are required to agree on well-formed input, so overwrite is safe).
// This is the standard insert-interval merge: copy over everything
// strictly before iv, fold everything overlapping or adjacent to iv
// into iv, then copy over everything strictly after.
func (r *Reassembler) insert(iv interval) {
	merged := make([]interval, 0, len(r.window)+1)
	i := 0
	n := len(r.window)

	for i < n && r.window[i].end() < iv.start {
		merged = append(merged, r.window[i])
		i++
	}

	for i < n && r.window[i].start <= iv.end() {
		existing := r.window[i]
		lo := iv.start
		if existing.start < lo {
			lo = existing.start
		}
		hi := iv.end()
		if existing.end() > hi {
			hi = existing.end()
		}
		combined := make([]byte, hi-lo)
		copy(combined[existing.start-lo:], existing.data)
		copy(combined[iv.start-lo:], iv.data)
		iv = interval{start: lo, data: combined}
		i++
	}
	merged = append(merged, iv)

	for i < n {
		merged = append(merged, r.window[i])
		i++
	}

	r.window = merged
}

// drain commits any window interval that starts exactly at the
// current write frontier, advancing until a gap is found, and closes
// the output stream once the committed frontier reaches eofIndex.
func (r *Reassembler) drain() {
	for len(r.window) > 0 {
		head := r.window[0]
		frontier := int64(r.output.BytesWritten())
		if head.start > frontier {
			break
		}
		skip := frontier - head.start
		if skip >= int64(len(head.data)) {
			r.window = r.window[1:]
			continue
		}
		n := r.output.Write(head.data[skip:])
		if n < len(head.data)-int(skip) {
			// output stream is full; stop committing, remainder stays queued
			r.window[0] = interval{start: head.start + skip + int64(n), data: head.data[int(skip)+n:]}
			break
		}
		r.window = r.window[1:]
	}

	if r.eofKnown && int64(r.output.BytesWritten()) >= r.eofIndex {
		r.output.EndInput()
	}
}

// UnassembledBytes returns the number of bytes currently held in the
// out-of-order window.
func (r *Reassembler) UnassembledBytes() int {
	total := 0
	for _, iv := range r.window {
		total += len(iv.data)
	}
	return total
}

// Empty reports whether there is nothing left to assemble or read.
func (r *Reassembler) Empty() bool {
	return r.UnassembledBytes() == 0 && r.output.Empty()
}
