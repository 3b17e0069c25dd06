/*
PURPOSE:
  Saves experiment results as JSON Lines, one model.Result per line.
  Unlike the CSV file, each line keeps the full result: the metadata map,
  accuracy_score and the untruncated output text.

REQUIREMENTS:
  User-specified:
  - Results must be reloadable for later comparison across runs.

  Implementation-discovered:
  - Lines use the same JSON shape as the REST API, so a saved run and an API
    response decode into the same []model.Result.
  - id and run_id make lines from several runs safe to concatenate.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run command)
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.
  - Close is idempotent; only the first call reports the file close error.

IMPLEMENTATION RULES:
  - Thread-safe; batch experiments may share a writer.

USAGE:
  w, err := output.NewJSONWriter("results.jsonl")
  defer w.Close()
  w.WriteAll(results)
*/

package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// JSONWriter handles writing results to a JSON Lines file.
type JSONWriter struct {
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewJSONWriter creates a new JSONWriter. It overwrites the file if it exists.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{closer: f, encoder: json.NewEncoder(f)}, nil
}

// Write writes a single result as a JSON line.
func (jw *JSONWriter) Write(r model.Result) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(r)
}

// WriteAll writes every result in order.
func (jw *JSONWriter) WriteAll(results []model.Result) error {
	for _, r := range results {
		if err := jw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file. Later calls return nil.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return nil
	}
	jw.closed = true
	if jw.closer == nil {
		return nil
	}
	return jw.closer.Close()
}
