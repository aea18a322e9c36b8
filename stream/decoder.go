// Package stream turns the backend's server-sent-event payload into
// conversation state.
//
// Information Hiding:
// - Line framing and partial-chunk buffering hidden behind Decoder
// - Conversation/session mutation rules hidden behind Reducer
package stream

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/obiajulu/comply/model"
)

// dataPrefix marks payload lines in the event stream.
const dataPrefix = "data: "

// Decoder incrementally decodes agent events from a chunked text stream.
// The payload is newline-delimited; lines prefixed "data: " carry one
// JSON-encoded event each. A chunk may contain zero, one, or many complete
// lines, and a line may span chunk boundaries: the decoder carries the
// incomplete trailing fragment over to the next chunk, so event decoding is
// independent of how the transport splits the stream.
type Decoder struct {
	buf strings.Builder
	log zerolog.Logger
}

// NewDecoder creates a decoder. Malformed payload lines are logged on log
// at debug level and skipped; they never fail the stream.
func NewDecoder(log zerolog.Logger) *Decoder {
	return &Decoder{log: log}
}

// Feed consumes the next raw chunk and returns the events completed by it,
// in receipt order.
func (d *Decoder) Feed(chunk []byte) []model.Event {
	var events []model.Event

	rest := d.buf.String() + string(chunk)
	d.buf.Reset()

	for {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			// Incomplete trailing line; keep it for the next chunk.
			d.buf.WriteString(rest)
			return events
		}
		line := rest[:idx]
		rest = rest[idx+1:]

		if ev, ok := d.decodeLine(line); ok {
			events = append(events, ev)
		}
	}
}

// Flush decodes whatever remains in the carry-over buffer. Call it once at
// end of stream in case the final line arrived without a trailing newline.
func (d *Decoder) Flush() []model.Event {
	line := d.buf.String()
	d.buf.Reset()
	if line == "" {
		return nil
	}
	if ev, ok := d.decodeLine(line); ok {
		return []model.Event{ev}
	}
	return nil
}

func (d *Decoder) decodeLine(line string) (model.Event, bool) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		// Blank separator or SSE field we don't use (event:, id:, retry:).
		return model.Event{}, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == "" {
		return model.Event{}, false
	}

	var ev model.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		d.log.Debug().Err(err).Str("line", payload).Msg("skipping malformed event")
		return model.Event{}, false
	}
	return ev, true
}
