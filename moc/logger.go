package moc

import (
	"log"
)

// Logger has the same method set as badger.Logger, so one value can be
// handed to both the context and the local store.
type Logger interface {
	Errorf(string, ...interface{})
	Warningf(string, ...interface{})
	Infof(string, ...interface{})
	Debugf(string, ...interface{})
}

// NewStdLogger logs through l. Debug messages are dropped unless verbose is set.
func NewStdLogger(l *log.Logger, verbose bool) Logger {
	if l == nil {
		l = log.Default()
	}
	return &stdLogger{l: l, verbose: verbose}
}

type stdLogger struct {
	l       *log.Logger
	verbose bool
}

func (s *stdLogger) Errorf(format string, args ...interface{}) {
	s.l.Printf("ERROR: "+format, args...)
}

func (s *stdLogger) Warningf(format string, args ...interface{}) {
	s.l.Printf("WARNING: "+format, args...)
}

func (s *stdLogger) Infof(format string, args ...interface{}) {
	s.l.Printf("INFO: "+format, args...)
}

func (s *stdLogger) Debugf(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	s.l.Printf("DEBUG: "+format, args...)
}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{})   {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Debugf(string, ...interface{})   {}
