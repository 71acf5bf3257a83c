// Package datalog records named numeric columns into CSV time series.
package datalog

import (
	"encoding/csv"
	"io"
	"strconv"
)

type column struct {
	name  string
	value func() float64
}

// Recorder samples a set of named columns into an io.Writer as CSV. Columns
// are read in the order they were added; the header row is emitted lazily
// before the first data row.
type Recorder struct {
	out     *csv.Writer
	columns []column
	repeat  int
	started bool
}

// NewRecorder returns a recorder writing CSV to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{out: csv.NewWriter(w), repeat: 1}
}

// AddColumn registers a column. The value function is called once per
// recorded row. Columns added after the first row would desynchronize the
// header and are ignored.
func (r *Recorder) AddColumn(name string, value func() float64) {
	if r.started {
		return
	}
	r.columns = append(r.columns, column{name: name, value: value})
}

// SetTimingRepeat sets the sampling cadence: Record only writes on steps
// divisible by k. Values below 1 record every step.
func (r *Recorder) SetTimingRepeat(k int) {
	if k < 1 {
		k = 1
	}
	r.repeat = k
}

// Record samples all columns for the given step counter, honoring the timing
// repeat. Rows for skipped steps cost nothing.
func (r *Recorder) Record(step int) error {
	if len(r.columns) == 0 || step%r.repeat != 0 {
		return nil
	}
	if !r.started {
		header := make([]string, len(r.columns))
		for i, c := range r.columns {
			header[i] = c.name
		}
		if err := r.out.Write(header); err != nil {
			return err
		}
		r.started = true
	}
	row := make([]string, len(r.columns))
	for i, c := range r.columns {
		row[i] = strconv.FormatFloat(c.value(), 'g', -1, 64)
	}
	return r.out.Write(row)
}

// Flush drains buffered rows to the underlying writer and reports any write
// error encountered so far.
func (r *Recorder) Flush() error {
	r.out.Flush()
	return r.out.Error()
}
