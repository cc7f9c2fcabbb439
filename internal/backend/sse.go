package backend

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nhle/qtplanner/internal/model"
)

// EventChange is the SSE event name carrying a model.Change.
const EventChange = "change"

// WriteEvent writes c as one server-sent event.
func WriteEvent(w io.Writer, c model.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding change: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventChange, data)
	return err
}

// maxEventSize bounds a single event line.
const maxEventSize = 1 << 20

// readEvents parses a text/event-stream from r and calls fn with each
// change event's data. Comments and other event names are skipped. It
// returns io.EOF when the stream ends cleanly.
func readEvents(r io.Reader, fn func(model.Change) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxEventSize)

	var (
		event string
		data  bytes.Buffer
	)
	dispatch := func() error {
		defer func() {
			event = ""
			data.Reset()
		}()
		if data.Len() == 0 || (event != "" && event != EventChange) {
			return nil
		}
		var c model.Change
		if err := json.Unmarshal(data.Bytes(), &c); err != nil {
			return fmt.Errorf("decoding change event: %w", err)
		}
		return fn(c)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
		case line[0] == ':':
		default:
			field, value, _ := cutField(line)
			switch field {
			case "event":
				event = value
			case "data":
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading event stream: %w", err)
	}
	return io.EOF
}

// cutField splits "field: value" per the event-stream format, dropping a
// single leading space from the value.
func cutField(line string) (string, string, bool) {
	field, value, ok := strings.Cut(line, ":")
	return field, strings.TrimPrefix(value, " "), ok
}
