// Package assets embeds the starter files written by 'prompt-tuner init'.
package assets

import "embed"

// Templates holds templates/*.yaml.
//
//go:embed templates/*.yaml
var Templates embed.FS
