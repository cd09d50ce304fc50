package remote

import (
	"bufio"
	"io"
	"strings"
)

// Stream reads server-sent events from the change channel
type Stream struct {
	body io.ReadCloser
	r    *bufio.Reader
}

// NewStream reads events from body
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, r: bufio.NewReader(body)}
}

// Next blocks until the next event and returns its data. Multi-line data is
// joined with newlines; comments and other fields are skipped. It returns
// io.EOF once the server ends the stream.
func (s *Stream) Next() (string, error) {
	var data []string
	seen := false
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" && !seen {
				return "", io.EOF
			}
			if err == io.EOF {
				// an event cut short is dropped
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if seen {
				return strings.Join(data, "\n"), nil
			}
		case strings.HasPrefix(line, ":"):
		case line == "data":
			seen = true
			data = append(data, "")
		case strings.HasPrefix(line, "data:"):
			seen = true
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}

// Close ends the stream
func (s *Stream) Close() error {
	return s.body.Close()
}
