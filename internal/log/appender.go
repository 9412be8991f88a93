package log

import (
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/natefinch/lumberjack.v2"
)

type MultiWriter struct {
	writers []io.Writer
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		_, e := w.Write(p)
		if e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

// buildOutput assembles the output writer from appender configs. Unknown
// appender types are skipped; with no usable appender stdout is used.
func buildOutput(appenders []AppenderConfig) io.Writer {
	mw := NewMultiWriter()
	for _, a := range appenders {
		switch a.Type {
		case "console":
			mw.Add(os.Stdout)
		case "file":
			var opts FileAppenderOptions
			if err := mapstructure.Decode(a.Options, &opts); err != nil || opts.Filename == "" {
				continue
			}
			mw.Add(&lumberjack.Logger{
				Filename:   opts.Filename,
				MaxSize:    opts.MaxSize,    // megabytes
				MaxBackups: opts.MaxBackups, // number of backups
				MaxAge:     opts.MaxAge,     // days
				Compress:   opts.Compress,   // compress the backups
			})
		}
	}
	if len(mw.writers) == 0 {
		mw.Add(os.Stdout)
	}
	return mw
}
