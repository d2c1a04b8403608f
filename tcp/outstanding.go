package tcp

import "container/list"

// outstandingSegment is a segment the sender has transmitted but not
// yet had fully acknowledged, tagged with its absolute starting
// sequence index so acks can be matched without re-unwrapping.
type outstandingSegment struct {
	seg   Segment
	start uint64
	ln    uint64
}

// outstandingQueue is the sender's FIFO of unacknowledged segments,
// grounded on the teacher's container/list-backed queue type.
type outstandingQueue struct {
	l list.List
}

func (q *outstandingQueue) push(seg Segment, start uint64) {
	q.l.PushBack(outstandingSegment{seg: seg, start: start, ln: seg.LengthInSequenceSpace()})
}

func (q *outstandingQueue) front() (outstandingSegment, bool) {
	if q.l.Len() == 0 {
		return outstandingSegment{}, false
	}
	return q.l.Front().Value.(outstandingSegment), true
}

func (q *outstandingQueue) popFront() {
	if q.l.Len() != 0 {
		q.l.Remove(q.l.Front())
	}
}

func (q *outstandingQueue) len() int { return q.l.Len() }

func (q *outstandingQueue) empty() bool { return q.l.Len() == 0 }

func (q *outstandingQueue) bytesInFlight() uint64 {
	var total uint64
	for e := q.l.Front(); e != nil; e = e.Next() {
		total += e.Value.(outstandingSegment).ln
	}
	return total
}

// clear discards all outstanding segments, e.g. on abortive close.
func (q *outstandingQueue) clear() {
	q.l.Init()
}
