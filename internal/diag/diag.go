// Package diag is the append-only audit log for the ingestion pipeline.
// Every skip, warning and insertion decision is emitted here so a run can
// be reviewed after the fact; the pipeline itself never reads it back.
package diag

import (
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	Info Level = iota
	Warning
)

func (l Level) String() string {
	if l == Warning {
		return "WARNING"
	}
	return "INFO"
}

// Sink receives one entry per pipeline decision. Implementations must be
// append-only; rotation is the implementation's concern.
type Sink interface {
	Emit(level Level, message string)
}

// FileSink writes leveled entries to a size-rotated log file, tagging each
// entry with the id of the run that produced it.
type FileSink struct {
	logger hclog.Logger
	writer *lumberjack.Logger
	runID  string
}

// NewFileSink opens (or creates) the audit log at path, rotating at
// maxSizeMB and keeping maxBackups rotated files.
func NewFileSink(path string, maxSizeMB, maxBackups int) *FileSink {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}

	runID := uuid.NewString()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "proc",
		Level:  hclog.Info,
		Output: writer,
	}).With("run_id", runID)

	return &FileSink{logger: logger, writer: writer, runID: runID}
}

func (s *FileSink) Emit(level Level, message string) {
	if level == Warning {
		s.logger.Warn(message)
		return
	}
	s.logger.Info(message)
}

// RunID identifies this invocation in rotated logs.
func (s *FileSink) RunID() string {
	return s.runID
}

func (s *FileSink) Close() error {
	return s.writer.Close()
}
