// Package logger implements the console and tabular logging used
// while running experiments
package logger

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ProgressFile is the name of the file which tabular rows are
// appended to
const ProgressFile = "progress.csv"

// Logger logs messages and tabular data. Tabular data is recorded
// with RecordTabular and written out as a single row with DumpTabular.
//
// A Logger is not safe for concurrent use.
type Logger struct {
	*log.Logger
	out  io.Writer
	dir  string
	keys []string
	vals map[string]string

	// header holds the columns written to the progress file, if
	// any row has been written yet
	header []string
}

// New returns a new Logger which writes messages to out and appends
// tabular rows to dir/progress.csv. If dir is empty, tabular rows
// are only written to out.
func New(out io.Writer, dir string) *Logger {
	return &Logger{
		Logger: log.New(out, "", log.Ltime),
		out:    out,
		dir:    dir,
		vals:   make(map[string]string),
	}
}

// Banner prints msg between two lines of n copies of sep
func (l *Logger) Banner(msg string, sep string, n int) {
	line := strings.Repeat(sep, n)
	fmt.Fprintln(l.out, line)
	fmt.Fprintln(l.out, msg)
	fmt.Fprintln(l.out, line)
}

// Warnf logs a warning
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.Printf("warning: "+format, v...)
}

// RecordTabular records a value to be written in the next row of
// tabular data. Recording the same key twice before DumpTabular
// overwrites the first value.
func (l *Logger) RecordTabular(key string, value interface{}) {
	if _, ok := l.vals[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.vals[key] = format(value)
}

// DumpTabular writes all recorded tabular data as a table to the
// output and as a row of the progress file, then clears the record.
//
// The columns of the progress file are fixed by the first row
// written. Later rows must record the same keys.
func (l *Logger) DumpTabular() error {
	if len(l.keys) == 0 {
		return nil
	}
	defer l.clear()

	width := 0
	for _, key := range l.keys {
		if len(key) > width {
			width = len(key)
		}
	}
	line := strings.Repeat("-", width+18)
	fmt.Fprintln(l.out, line)
	for _, key := range l.keys {
		fmt.Fprintf(l.out, "| %*s | %12s |\n", width, key, l.vals[key])
	}
	fmt.Fprintln(l.out, line)

	if l.dir == "" {
		return nil
	}
	return l.appendRow()
}

// appendRow appends the recorded tabular data to the progress file
func (l *Logger) appendRow() error {
	if l.header == nil {
		l.header = append([]string(nil), l.keys...)
	} else if len(l.header) != len(l.keys) {
		return errors.Errorf("appendRow: expected %v columns, got %v",
			len(l.header), len(l.keys))
	}

	row := make([]string, len(l.header))
	for i, key := range l.header {
		val, ok := l.vals[key]
		if !ok {
			return errors.Errorf("appendRow: no value recorded for %q", key)
		}
		row[i] = val
	}

	filename := filepath.Join(l.dir, ProgressFile)
	_, statErr := os.Stat(filename)
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0644)
	if err != nil {
		return errors.Wrap(err, "appendRow")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if os.IsNotExist(statErr) {
		if err := w.Write(l.header); err != nil {
			return errors.Wrap(err, "appendRow")
		}
	}
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "appendRow")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "appendRow")
}

func (l *Logger) clear() {
	l.keys = l.keys[:0]
	for key := range l.vals {
		delete(l.vals, key)
	}
}

func format(value interface{}) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', 8, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', 8, 32)
	default:
		return fmt.Sprint(v)
	}
}
