package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/usecase"
)

const maxParallelFiles = 4

var (
	scoreFiles  []string
	scoreFormat string

	statusColors = map[domain.Status]*color.Color{
		domain.StatusReliable:     color.New(color.FgGreen, color.Bold),
		domain.StatusQuestionable: color.New(color.FgYellow, color.Bold),
		domain.StatusUnreliable:   color.New(color.FgRed, color.Bold),
	}
	labelColor = color.New(color.Faint)
	errorColor = color.New(color.FgRed, color.Bold)
)

var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Score news text from arguments, files or stdin",
	Long: `Score news text. Arguments are joined into one text; each --file is scored
separately and concurrently. With neither, the text is read from stdin.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringArrayVarP(&scoreFiles, "file", "f", nil, "read text from file (repeatable)")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "auto", "output format (auto|json|text)")
}

type scoredInput struct {
	Source string        `json:"source"`
	Result domain.Result `json:"result"`
	Error  string        `json:"error,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	inputs, err := collectInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	application, logger, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	outputs := scoreAll(cmd, application.Analyzer(), inputs)

	out := cmd.OutOrStdout()
	if useJSON(out) {
		if err := writeScoresJSON(out, outputs); err != nil {
			return err
		}
	} else {
		for i, o := range outputs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printResult(out, o, len(outputs) > 1)
		}
	}

	for _, o := range outputs {
		if o.Error != "" {
			return fmt.Errorf("%d of %d input(s) could not be scored", countFailed(outputs), len(outputs))
		}
	}
	return nil
}

type namedText struct {
	source string
	text   string
	err    error
}

func collectInputs(stdin io.Reader, args []string) ([]namedText, error) {
	var inputs []namedText
	if len(args) > 0 {
		inputs = append(inputs, namedText{source: "args", text: strings.Join(args, " ")})
	}
	for _, path := range scoreFiles {
		raw, err := os.ReadFile(path)
		inputs = append(inputs, namedText{source: path, text: string(raw), err: err})
	}
	if len(inputs) == 0 {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		inputs = append(inputs, namedText{source: "stdin", text: string(raw)})
	}
	return inputs, nil
}

func scoreAll(cmd *cobra.Command, analyzer *usecase.Analyzer, inputs []namedText) []scoredInput {
	outputs := make([]scoredInput, len(inputs))

	var group errgroup.Group
	group.SetLimit(maxParallelFiles)
	for i, in := range inputs {
		group.Go(func() error {
			outputs[i].Source = in.source
			if in.err != nil {
				outputs[i].Error = in.err.Error()
				return nil
			}
			result, err := analyzer.ScoreText(cmd.Context(), in.text)
			if err != nil {
				outputs[i].Error = err.Error()
				return nil
			}
			outputs[i].Result = result
			return nil
		})
	}
	_ = group.Wait()

	return outputs
}

func useJSON(out io.Writer) bool {
	switch scoreFormat {
	case "json":
		return true
	case "text":
		return false
	}
	f, ok := out.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func writeScoresJSON(out io.Writer, outputs []scoredInput) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(outputs) == 1 && outputs[0].Error == "" {
		return enc.Encode(outputs[0].Result)
	}
	return enc.Encode(outputs)
}

func printResult(out io.Writer, o scoredInput, withSource bool) {
	if withSource {
		fmt.Fprintln(out, labelColor.Sprint("== ")+o.Source)
	}
	if o.Error != "" {
		fmt.Fprintln(out, errorColor.Sprint("error: ")+o.Error)
		return
	}

	r := o.Result
	c, ok := statusColors[r.Status]
	if !ok {
		c = color.New(color.Bold)
	}
	fmt.Fprintf(out, "%s %s\n", c.Sprintf("%d/100", r.Score), c.Sprint(strings.ToUpper(string(r.Status))))
	fmt.Fprintf(out, "%s %s (real %.2f%%, fake %.2f%%)\n", labelColor.Sprint("model:"), r.ModelPrediction, r.ConfidenceReal, r.ConfidenceFake)
	fmt.Fprintf(out, "%s emotional=%s sources=%s bias=%s factCheck=%s\n", labelColor.Sprint("indicators:"),
		r.Indicators.Emotional, r.Indicators.Sources, r.Indicators.Bias, r.Indicators.FactCheck)
	for _, rec := range r.Recommendations {
		fmt.Fprintf(out, "  - %s\n", rec)
	}
}

func countFailed(outputs []scoredInput) int {
	n := 0
	for _, o := range outputs {
		if o.Error != "" {
			n++
		}
	}
	return n
}
