package provider

import (
	"fmt"
	"maps"
	"strconv"
)

const (
	// DefaultTemperature is sent when the parameters carry no temperature.
	DefaultTemperature = 0.7

	// DefaultMaxTokens is sent when the parameters carry no max_tokens.
	DefaultMaxTokens = 1000
)

// Parameter keys understood by every provider. Other keys are ignored.
const (
	ParamModel       = "model"
	ParamTemperature = "temperature"
	ParamMaxTokens   = "max_tokens"
)

// Params is the free-form parameter set passed to Generate.
type Params map[string]any

// Merge returns a new Params with each layer applied in order; later layers win.
func Merge(layers ...map[string]any) Params {
	out := Params{}
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}

// Model returns the model parameter or def when absent or empty.
func (p Params) Model(def string) string {
	if s, ok := p[ParamModel].(string); ok && s != "" {
		return s
	}
	return def
}

// Temperature returns the temperature parameter or DefaultTemperature.
func (p Params) Temperature() float64 {
	if f, ok := toFloat(p[ParamTemperature]); ok {
		return f
	}
	return DefaultTemperature
}

// MaxTokens returns the max_tokens parameter or DefaultMaxTokens.
func (p Params) MaxTokens() int {
	if f, ok := toFloat(p[ParamMaxTokens]); ok && f > 0 {
		return int(f)
	}
	return DefaultMaxTokens
}

// toFloat accepts the numeric shapes produced by encoding/json, yaml.v3 and Go literals.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	}
	return 0, false
}
