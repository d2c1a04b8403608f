package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReassemblerInOrder(t *testing.T) {
	r := NewReassembler(8)
	r.PushSubstring([]byte("abc"), 0, false)
	assert.Equal(t, []byte("abc"), r.Output().PeekOutput(3))
}

func TestReassemblerOverlapAndEOF(t *testing.T) {
	r := NewReassembler(8)
	r.PushSubstring([]byte("abc"), 0, false)
	assert.Equal(t, []byte("abc"), r.Output().PeekOutput(3))

	r.PushSubstring([]byte("ef"), 4, false)
	assert.Equal(t, []byte("abc"), r.Output().PeekOutput(3))
	assert.Equal(t, 2, r.UnassembledBytes())

	r.PushSubstring([]byte("de"), 3, true)
	assert.Equal(t, uint64(6), r.Output().BytesWritten())
	assert.True(t, r.Output().InputEnded())
	assert.Equal(t, 0, r.UnassembledBytes())
	assert.Equal(t, []byte("abcdef"), r.Output().Read(6))
	assert.True(t, r.Output().Eof())
}

func TestReassemblerDropsOutOfWindowData(t *testing.T) {
	r := NewReassembler(4)
	r.PushSubstring([]byte("abcdefgh"), 0, false)
	assert.Equal(t, []byte("abcd"), r.Output().PeekOutput(4))
	assert.Equal(t, 0, r.UnassembledBytes())
}

func TestReassemblerIdempotentPush(t *testing.T) {
	r := NewReassembler(8)
	r.PushSubstring([]byte("bcd"), 1, false)
	before := r.UnassembledBytes()
	r.PushSubstring([]byte("bcd"), 1, false)
	assert.Equal(t, before, r.UnassembledBytes())
}

func TestReassemblerReorderingToleranceReachesSameResult(t *testing.T) {
	r := NewReassembler(16)
	r.PushSubstring([]byte("llo"), 2, true)
	r.PushSubstring([]byte("he"), 0, false)
	assert.Equal(t, []byte("hello"), r.Output().Read(5))
	assert.True(t, r.Output().Eof())
}

func TestReassemblerEmptyEOFOnlySubstringAtFrontier(t *testing.T) {
	r := NewReassembler(8)
	r.PushSubstring([]byte("ab"), 0, false)
	r.PushSubstring(nil, 2, true)
	assert.True(t, r.Output().InputEnded())
}

func TestReassemblerEmpty(t *testing.T) {
	r := NewReassembler(8)
	assert.True(t, r.Empty())
	r.PushSubstring([]byte("a"), 1, false)
	assert.False(t, r.Empty())
}
