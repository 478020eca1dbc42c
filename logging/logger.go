package logging

import (
	"io"
	"log"
	"os"
)

var logger *Logger

// Logger bundles one stdlib log.Logger per severity. Trace is discarded
// unless enabled; info and warnings go to stdout, the rest to stderr.
type Logger struct {
	Flags int
	Trace *log.Logger
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Fatal *log.Logger

	writers [5]io.Writer
}

func (l *Logger) Init() *Logger {
	l.Trace = log.New(l.writers[0], "TRACE: ", l.Flags)
	l.Info = log.New(l.writers[1], "INFO:  ", l.Flags)
	l.Warn = log.New(l.writers[2], "WARN:  ", l.Flags)
	l.Error = log.New(l.writers[3], "ERROR: ", l.Flags)
	l.Fatal = log.New(l.writers[4], "FATAL: ", l.Flags)
	return l
}

// EnableTrace routes trace output to stdout instead of discarding it.
func (l *Logger) EnableTrace() *Logger {
	l.writers[0] = os.Stdout
	return l.Init()
}

// AddLogFile tees every non-discarded level into logfile as well.
func (l *Logger) AddLogFile(logfile string) *Logger {
	f, err := os.OpenFile(logfile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		l.Fatal.Fatal(err)
	}
	for i, w := range l.writers {
		if w != io.Discard {
			l.writers[i] = io.MultiWriter(w, f)
		}
	}
	return l.Init()
}

func GetLogger() *Logger {
	if logger == nil {
		logger = &Logger{
			Flags: log.Ldate | log.Ltime | log.Lshortfile,
			writers: [5]io.Writer{
				io.Discard, // trace
				os.Stdout,  // info
				os.Stdout,  // warn
				os.Stderr,  // error
				os.Stderr,  // fatal
			},
		}
		logger.Init()
	}
	return logger
}
