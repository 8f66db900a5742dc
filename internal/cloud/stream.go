package cloud

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// Build status values sent by the build event stream.
const (
	StatusQueued   = "queued"
	StatusBuilding = "building"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// BuildEvent is one server-sent event of a running build.
type BuildEvent struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	BinaryURL string `json:"binary_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BuildStream reads the build event stream until the build finishes or fails.
type BuildStream struct {
	reader *bufio.Reader
	last   BuildEvent
}

// NewBuildStream creates a stream reader over r.
func NewBuildStream(r io.Reader) *BuildStream {
	return &BuildStream{reader: bufio.NewReader(r)}
}

// Process calls onProgress with each event's message and returns the final
// event. A stream that ends before a terminal status is an error.
func (s *BuildStream) Process(ctx context.Context, onProgress func(string)) (*BuildEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		var ev BuildEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			logging.Debug("skipping malformed build event", logging.Fields{"data": data, "error": err.Error()})
			continue
		}
		s.last = ev

		if ev.Message != "" && onProgress != nil {
			onProgress(ev.Message)
		}

		switch ev.Status {
		case StatusFinished:
			return &ev, nil
		case StatusFailed:
			msg := ev.Error
			if msg == "" {
				msg = ev.Message
			}
			return &ev, fmt.Errorf("%s", msg)
		}
	}

	return nil, fmt.Errorf("build stream ended while %s", s.lastStatus())
}

func (s *BuildStream) lastStatus() string {
	if s.last.Status == "" {
		return "waiting for the build to start"
	}
	return s.last.Status
}
