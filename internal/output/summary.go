package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

var (
	colorBold  = color.New(color.Bold)
	colorGreen = color.New(color.FgGreen)
	colorCyan  = color.New(color.FgCyan)
)

// PromptSummary aggregates the results of one prompt within one experiment.
type PromptSummary struct {
	Experiment   string
	Prompt       string
	Runs         int
	TotalCost    float64
	AvgCost      float64
	AvgLatency   float64
	InputTokens  int
	OutputTokens int
}

// Summarize groups results by (experiment, prompt) in first-seen order.
func Summarize(results []model.Result) []PromptSummary {
	type key struct{ exp, prompt string }
	index := map[key]int{}
	var out []PromptSummary

	for _, r := range results {
		k := key{r.ExperimentID, r.PromptName}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, PromptSummary{Experiment: r.ExperimentID, Prompt: r.PromptName})
		}
		s := &out[i]
		s.Runs++
		s.TotalCost += r.Cost
		s.AvgLatency += r.Latency
		s.InputTokens += r.InputTokens()
		s.OutputTokens += r.OutputTokens()
	}

	for i := range out {
		out[i].AvgCost = out[i].TotalCost / float64(out[i].Runs)
		out[i].AvgLatency /= float64(out[i].Runs)
	}
	return out
}

// PrintSummary renders a per-prompt comparison table. Within each experiment
// the cheapest and fastest prompts are marked.
func PrintSummary(w io.Writer, byExperiment map[string][]model.Result) error {
	names := make([]string, 0, len(byExperiment))
	for name := range byExperiment {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		summaries := Summarize(byExperiment[name])
		if _, err := fmt.Fprintf(w, "\n%s\n", colorBold.Sprintf("Experiment: %s", name)); err != nil {
			return err
		}
		if len(summaries) == 0 {
			if _, err := fmt.Fprintln(w, "  (no results)"); err != nil {
				return err
			}
			continue
		}

		cheapest, fastest := 0, 0
		for i, s := range summaries {
			if s.AvgCost < summaries[cheapest].AvgCost {
				cheapest = i
			}
			if s.AvgLatency < summaries[fastest].AvgLatency {
				fastest = i
			}
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  PROMPT\tRUNS\tTOTAL COST\tAVG COST\tAVG LATENCY\tTOKENS IN/OUT\t")
		for i, s := range summaries {
			var marks []string
			if len(summaries) > 1 && i == cheapest {
				marks = append(marks, colorGreen.Sprint("cheapest"))
			}
			if len(summaries) > 1 && i == fastest {
				marks = append(marks, colorCyan.Sprint("fastest"))
			}
			fmt.Fprintf(tw, "  %s\t%d\t$%.4f\t$%.4f\t%.2fs\t%d/%d\t%s\n",
				s.Prompt, s.Runs, s.TotalCost, s.AvgCost, s.AvgLatency,
				s.InputTokens, s.OutputTokens, strings.Join(marks, " "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
