package cli

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/prompt-tuner/internal/config"
	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/output"
)

// execute runs the CLI with args in a clean temp directory and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("PROMPT_TUNER_OUTPUT_DIR", "")

	logger := output.Logger
	t.Cleanup(func() { output.SetLogger(logger) })

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// requestLog records the model named by each chat completion request.
type requestLog struct {
	mu     sync.Mutex
	models []string
}

func (l *requestLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models = append(l.models, name)
}

func (l *requestLog) Models() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.models...)
}

func newFakeOpenAI(t *testing.T, calls *atomic.Int32) *httptest.Server {
	return newRecordingOpenAI(t, calls, nil)
}

func newRecordingOpenAI(t *testing.T, calls *atomic.Int32, log *requestLog) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if log != nil {
			var body struct {
				Model string `json:"model"`
			}
			if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
				log.add(body.Model)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Paris"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 1000, "completion_tokens": 1000, "total_tokens": 2000},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

const experimentYAML = `
name: capitals
provider: openai
prompts:
  - name: terse
    content: "Answer:"
  - name: verbose
    content: "Answer in detail:"
test_cases:
  - input_text: What is the capital of France?
  - input_text: What is the capital of Spain?
`

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "prompt-tuner dev")
}

func TestInvalidLogFormat(t *testing.T) {
	_, _, err := execute(t, "--log-format", "xml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestRun_WritesResultsAndSummary(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var calls atomic.Int32
	srv := newFakeOpenAI(t, &calls)
	cfgPath := writeFile(t, dir, "cfg.yaml", "openai:\n  api_key: test-key\n  base_url: "+srv.URL+"/v1\n")
	expPath := writeFile(t, dir, "exp.yaml", experimentYAML)
	outDir := filepath.Join(dir, "out")

	stdout, stderr, err := execute(t, "--config", cfgPath, "run", expPath, "-o", outDir)
	require.NoError(t, err, stderr)
	assert.Equal(t, int32(4), calls.Load())

	assert.Contains(t, stdout, "Experiment: capitals")
	assert.Contains(t, stdout, "terse")
	assert.Contains(t, stdout, "verbose")
	assert.Contains(t, stderr, "Results saved")

	f, err := os.Open(filepath.Join(outDir, "results.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, output.CSVHeader, records[0])

	jf, err := os.Open(filepath.Join(outDir, "results.jsonl"))
	require.NoError(t, err)
	defer jf.Close()
	var results []model.Result
	scanner := bufio.NewScanner(jf)
	for scanner.Scan() {
		var r model.Result
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		results = append(results, r)
	}
	require.Len(t, results, 4)
	assert.Equal(t, "terse", results[0].PromptName)
	assert.Equal(t, "verbose", results[3].PromptName)
	// gpt-4o: 1000 input + 1000 output tokens.
	assert.InDelta(t, 0.02, results[0].Cost, 1e-9)
	assert.Equal(t, "Paris", results[0].Output)
}

func TestRun_ModelOverrideAndBatch(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var calls atomic.Int32
	srv := newFakeOpenAI(t, &calls)
	writeFile(t, dir, "prompt_tuner.yaml", "output_file: batch.csv\nopenai:\n  api_key: test-key\n  base_url: "+srv.URL+"/v1\n")
	a := writeFile(t, dir, "a.yaml", experimentYAML)
	b := writeFile(t, dir, "b.yaml", strings.Replace(experimentYAML, "name: capitals", "name: capitals-2", 1))

	_, stderr, err := execute(t, "run", a, b, "--model", "gpt-4", "--no-summary")
	require.NoError(t, err, stderr)
	assert.Equal(t, int32(8), calls.Load())

	data, err := os.ReadFile(filepath.Join(dir, "batch.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 8)

	var first, last model.Result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[7]), &last))
	assert.Equal(t, "capitals", first.ExperimentID)
	assert.Equal(t, "capitals-2", last.ExperimentID)
	assert.Equal(t, "gpt-4", first.Model())
}

func TestRun_ModelFlagOverridesFileParameters(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var calls atomic.Int32
	var log requestLog
	srv := newRecordingOpenAI(t, &calls, &log)
	writeFile(t, dir, "prompt_tuner.yaml", "openai:\n  api_key: test-key\n  base_url: "+srv.URL+"/v1\n")
	expPath := writeFile(t, dir, "exp.yaml", `
name: pinned
provider: openai
model: gpt-4o
parameters:
  model: gpt-3.5-turbo
prompts:
  - name: plain
    content: "Answer:"
  - name: pinned-prompt
    content: "Answer briefly:"
    parameters:
      model: gpt-3.5-turbo-16k
test_cases:
  - input_text: What is the capital of France?
`)

	_, stderr, err := execute(t, "run", expPath, "--model", "gpt-4", "--no-summary")
	require.NoError(t, err, stderr)

	assert.Equal(t, []string{"gpt-4", "gpt-4"}, log.Models())

	data, err := os.ReadFile(filepath.Join(dir, "results.jsonl"))
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var r model.Result
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		assert.Equal(t, "gpt-4", r.Model())
	}
}

func TestRun_MissingProviderKeyFailsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	expPath := writeFile(t, dir, "exp.yaml", experimentYAML)

	_, stderr, err := execute(t, "run", expPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider not registered")
	assert.Contains(t, stderr, "OpenAI provider disabled")

	_, statErr := os.Stat(filepath.Join(dir, "results.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_RequiresExperimentFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := execute(t, "run")
	assert.Error(t, err)
}

func TestProviders(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "prompt_tuner.yaml", "anthropic:\n  api_key: ant-key\n  default_model: claude-3-haiku-20240307\n")

	stdout, _, err := execute(t, "providers", "--pricing")
	require.NoError(t, err)

	assert.Contains(t, stdout, "disabled (OPENAI_API_KEY not set)")
	assert.Contains(t, stdout, "enabled")
	assert.Contains(t, stdout, "claude-3-haiku-20240307")
	assert.Contains(t, stdout, "gpt-4o")
	assert.Contains(t, stdout, "gpt-3.5-turbo (fallback)")
	assert.Contains(t, stdout, "openai pricing")
	assert.Contains(t, stdout, "anthropic pricing")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "init", "starter")
	require.NoError(t, err)

	exp := filepath.Join(dir, "starter", "basic_experiment.yaml")
	_, err = os.Stat(filepath.Join(dir, "starter", "prompt_tuner.yaml"))
	require.NoError(t, err)
	require.FileExists(t, exp)

	exps, err := config.LoadExperiments(exp)
	require.NoError(t, err)
	require.Len(t, exps, 1)
	assert.Len(t, exps[0].Prompts, 2)
	assert.Len(t, exps[0].TestCases, 2)

	cfg, err := config.Load(filepath.Join(dir, "starter", "prompt_tuner.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.DefaultModel)

	require.NoError(t, os.WriteFile(exp, []byte("edited"), 0o644))
	_, stderr, err := execute(t, "init", "starter")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Skipping existing file")
	data, err := os.ReadFile(exp)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data))

	_, _, err = execute(t, "init", "starter", "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(exp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Prompt Comparison Test")
}
