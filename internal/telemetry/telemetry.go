// Package telemetry provides operator-facing diagnostic sinks.
// Lines are buffered with AddData and made visible by Update.
package telemetry

import (
	"log"
	"strings"
)

// Sink buffers labeled status lines and flushes them to the operator.
type Sink interface {
	// AddData buffers one line.
	AddData(label, value string)

	// Update flushes buffered lines. The buffer is cleared even on error.
	Update() error
}

// Line is one buffered label/value pair.
type Line struct {
	Label string
	Value string
}

// String renders the line the way it is shown to the operator.
func (l Line) String() string {
	return strings.TrimSpace(l.Label + " " + l.Value)
}

// LogSink writes flushed lines through a standard logger.
type LogSink struct {
	logger  *log.Logger
	pending []Line
}

// NewLogSink creates a LogSink. A nil logger uses the standard logger.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

// AddData buffers one line.
func (s *LogSink) AddData(label, value string) {
	s.pending = append(s.pending, Line{Label: label, Value: value})
}

// Update writes every buffered line, one log entry per line.
func (s *LogSink) Update() error {
	for _, l := range s.pending {
		s.logger.Printf("telemetry: %s", l)
	}
	s.pending = s.pending[:0]
	return nil
}
