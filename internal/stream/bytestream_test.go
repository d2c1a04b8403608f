package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteStreamBoundedWriteAndRead(t *testing.T) {
	s := NewByteStream(4)

	assert.Equal(t, 4, s.Write([]byte("Hello")))
	assert.Equal(t, []byte("Hel"), s.PeekOutput(3))
	s.PopOutput(2)
	assert.Equal(t, 1, s.Write([]byte("!")))
	assert.Equal(t, []byte("llo!"), s.Read(10))
	assert.True(t, s.Empty())
}

func TestByteStreamInvariant(t *testing.T) {
	s := NewByteStream(16)
	s.Write([]byte("abcdefgh"))
	s.PopOutput(3)
	assert.Equal(t, int(s.BytesWritten()), int(s.BytesRead())+s.BufferSize())
}

func TestByteStreamEof(t *testing.T) {
	s := NewByteStream(8)
	s.Write([]byte("ab"))
	assert.False(t, s.Eof())
	s.EndInput()
	assert.False(t, s.Eof())
	s.Read(2)
	assert.True(t, s.Eof())
}

func TestByteStreamInputEndedStopsWrites(t *testing.T) {
	s := NewByteStream(8)
	s.EndInput()
	assert.Equal(t, 0, s.Write([]byte("x")))
}

func TestByteStreamErrorIsSticky(t *testing.T) {
	s := NewByteStream(8)
	s.SetError()
	assert.True(t, s.Error())
}
