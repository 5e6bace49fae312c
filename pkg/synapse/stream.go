package synapse

import (
	"bytes"
	"io"
)

// BufferedBody is a request body held fully in memory. Only buffered bodies
// expose their raw contents through Request.Raw and Request.JSON.
type BufferedBody interface {
	io.Reader
	Contents() string
}

// Stream is an in-memory request body that can be read any number of times
type Stream struct {
	data   []byte
	reader *bytes.Reader
}

// NewStream wraps data. The slice is not copied.
func NewStream(data []byte) *Stream {
	return &Stream{data: data, reader: bytes.NewReader(data)}
}

// NewStreamString wraps a string body
func NewStreamString(s string) *Stream {
	return NewStream([]byte(s))
}

// ReadStream drains r into a Stream, reading at most limit bytes when limit
// is positive. ErrBodyTooLarge is returned when r holds more.
func ReadStream(r io.Reader, limit int64) (*Stream, error) {
	if r == nil {
		return NewStream(nil), nil
	}
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return NewStream(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrBodyTooLarge
	}
	return NewStream(data), nil
}

// Read implements io.Reader
func (s *Stream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Rewind moves the read position back to the start
func (s *Stream) Rewind() {
	s.reader.Reset(s.data)
}

// Contents returns the whole body regardless of the read position
func (s *Stream) Contents() string {
	return string(s.data)
}

// Bytes returns the underlying data
func (s *Stream) Bytes() []byte {
	return s.data
}

// Size returns the body length in bytes
func (s *Stream) Size() int64 {
	return int64(len(s.data))
}
