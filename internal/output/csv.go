/*
PURPOSE:
  Writes experiment results to a CSV file for spreadsheet comparison.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV.

  Implementation-discovered:
  - Metadata is flattened into input_tokens/output_tokens/model columns.
  - Batch runs write from several experiments, so writes are serialized.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.Write(result)
  w.Close()

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// CSVHeader is the column layout written by CSVWriter.
var CSVHeader = []string{
	"id", "run_id", "experiment_id", "prompt_name", "test_case_id", "test_case_index",
	"provider", "model", "timestamp", "latency_s", "cost_usd",
	"input_tokens", "output_tokens", "input_text", "output",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	closer io.Closer
	writer *csv.Writer
	mu     sync.Mutex
	closed bool
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cw, err := newCSVWriter(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return cw, nil
}

func newCSVWriter(w io.Writer, c io.Closer) (*CSVWriter, error) {
	cw := &CSVWriter{closer: c, writer: csv.NewWriter(w)}
	if err := cw.writer.Write(CSVHeader); err != nil {
		return nil, err
	}
	cw.writer.Flush()
	return cw, cw.writer.Error()
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.ID,
		r.RunID,
		r.ExperimentID,
		r.PromptName,
		r.TestCaseID,
		strconv.Itoa(r.TestCaseIndex),
		string(r.Provider),
		r.Model(),
		r.Timestamp.Format(time.RFC3339),
		fmt.Sprintf("%.4f", r.Latency),
		fmt.Sprintf("%.6f", r.Cost),
		strconv.Itoa(r.InputTokens()),
		strconv.Itoa(r.OutputTokens()),
		r.InputText,
		r.Output,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// WriteAll writes every result in order.
func (cw *CSVWriter) WriteAll(results []model.Result) error {
	for _, r := range results {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file. Later calls return nil.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return nil
	}
	cw.closed = true
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		if cw.closer != nil {
			cw.closer.Close()
		}
		return err
	}
	if cw.closer == nil {
		return nil
	}
	return cw.closer.Close()
}
