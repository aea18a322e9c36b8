package api

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/obiajulu/comply/model"
	"github.com/obiajulu/comply/stream"
)

// readBufSize is the transport read size. Events are small; the decoder
// handles lines that straddle reads, so the size only affects syscall count.
const readBufSize = 4096

// Stream delivers agent events from one open /chat response. It reads raw
// chunks off the transport and feeds them through stream.Decoder, so events
// come out intact no matter how the network fragments the payload.
type Stream struct {
	body    io.ReadCloser
	decoder *stream.Decoder
	buf     []byte

	pending []model.Event
	eof     bool
}

func newStream(body io.ReadCloser, log zerolog.Logger) *Stream {
	return &Stream{
		body:    body,
		decoder: stream.NewDecoder(log),
		buf:     make([]byte, readBufSize),
	}
}

// Recv returns the next event. It returns io.EOF at the natural end of the
// stream and the transport error otherwise.
func (s *Stream) Recv() (model.Event, error) {
	for len(s.pending) == 0 {
		if s.eof {
			return model.Event{}, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.pending = s.decoder.Feed(s.buf[:n])
		}
		if err == io.EOF {
			s.pending = append(s.pending, s.decoder.Flush()...)
			s.eof = true
		} else if err != nil {
			return model.Event{}, err
		}
	}

	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, nil
}

// Close tears down the underlying transport. Safe to call after Recv has
// returned io.EOF.
func (s *Stream) Close() error {
	return s.body.Close()
}
