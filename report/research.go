// Package report renders estimator results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	tss "github.com/lucasjlepore/tss-estimator"
	"github.com/lucasjlepore/tss-estimator/pipeline"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// Format selects how a research report is rendered.
type Format string

const (
	TextFormat  Format = "text"
	TableFormat Format = "table"
	JSONFormat  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case TextFormat, TableFormat, JSONFormat:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, table or json)", s)
	}
}

// Options controls rendering of a research report.
type Options struct {
	Format Format
	// Width is the terminal width used to fit the table. Zero detects it.
	Width int
}

// defaultWidth is used when the terminal width cannot be detected.
const defaultWidth = 80

// fixedColumnsWidth is the table space taken by every column but the path.
const fixedColumnsWidth = 85

// TerminalWidth returns override when positive, else the width of stdout,
// else defaultWidth.
func TerminalWidth(override int) int {
	if override > 0 {
		return override
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// TruncatePath shortens path to maxWidth runes, keeping its tail.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ResearchRow compares the estimate of one accepted file with its reference.
type ResearchRow struct {
	Path      string             `json:"path"`
	Samples   int                `json:"samples"`
	Estimate  float64            `json:"estimate"`
	Reference float64            `json:"reference"`
	HeartRate tss.HeartRateStats `json:"heart_rate"`
}

// Delta is the estimate minus the reference.
func (r ResearchRow) Delta() float64 { return r.Estimate - r.Reference }

// Research is the full outcome of one research run.
type Research struct {
	Dir      string        `json:"dir"`
	Rows     []ResearchRow `json:"files"`
	Rejected int           `json:"rejected"`
	Elapsed  time.Duration `json:"-"`
}

// BuildResearch estimates every accepted file of set. The estimate is not gap
// corrected: the reference of each file is already rescaled to its sample count.
func BuildResearch(set *pipeline.ResultSet, cfg tss.Config) Research {
	out := Research{}
	if set == nil {
		return out
	}
	out.Dir = set.Dir
	out.Rejected = len(set.Failures)
	out.Rows = make([]ResearchRow, 0, len(set.Files))
	for _, f := range set.Files {
		out.Rows = append(out.Rows, ResearchRow{
			Path:      f.Path,
			Samples:   f.Samples(),
			Estimate:  tss.Estimate(f.HeartRate, cfg),
			Reference: f.ReferenceTSS,
			HeartRate: tss.Stats(f.HeartRate),
		})
	}
	return out
}

// Summary aggregates the rows of a research run.
type Summary struct {
	Files             int     `json:"files"`
	MeanEstimate      float64 `json:"mean_estimate"`
	MeanReference     float64 `json:"mean_reference"`
	MeanAbsoluteDelta float64 `json:"mean_absolute_delta"`
}

// Summarize returns the mean estimate, reference and absolute delta.
func (r Research) Summarize() Summary {
	est := make([]float64, len(r.Rows))
	ref := make([]float64, len(r.Rows))
	abs := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		est[i] = row.Estimate
		ref[i] = row.Reference
		abs[i] = math.Abs(row.Delta())
	}
	return Summary{
		Files:             len(r.Rows),
		MeanEstimate:      tss.Mean(est),
		MeanReference:     tss.Mean(ref),
		MeanAbsoluteDelta: tss.Mean(abs),
	}
}

// WriteResearch renders r to w in the requested format.
func WriteResearch(w io.Writer, r Research, opts Options) error {
	switch opts.Format {
	case JSONFormat:
		if err := writeResearchJSON(w, r); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	case TableFormat:
		return writeResearchTable(w, r, TerminalWidth(opts.Width))
	default:
		_, err := io.WriteString(w, BuildResearchText(r))
		return err
	}
}

// BuildResearchText renders the plain report: the accepted file count, a block
// per file and the wall time of the run.
func BuildResearchText(r Research) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d\n", len(r.Rows))
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "total time: %d   file: %s\n", row.Samples, row.Path)
		fmt.Fprintf(&b, "counted: %.2f\n", row.Estimate)
		fmt.Fprintf(&b, "real: %.2f\n", row.Reference)
		fmt.Fprintf(&b, "min avg max: %d %.2f %d\n", row.HeartRate.Min, row.HeartRate.Avg, row.HeartRate.Max)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "total time: %.2f\n", r.Elapsed.Seconds())

	return b.String()
}

func writeResearchTable(w io.Writer, r Research, width int) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"File", "Samples", "Estimate", "Reference", "Delta", "Min HR", "Avg HR", "Max HR"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	over := color.New(color.FgRed).SprintFunc()
	under := color.New(color.FgGreen).SprintFunc()

	data := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		delta := fmt.Sprintf("%+.2f", row.Delta())
		switch {
		case row.Delta() > 0:
			delta = over(delta)
		case row.Delta() < 0:
			delta = under(delta)
		}
		data = append(data, []string{
			TruncatePath(row.Path, max(width-fixedColumnsWidth, 20)),
			strconv.Itoa(row.Samples),
			fmt.Sprintf("%.2f", row.Estimate),
			fmt.Sprintf("%.2f", row.Reference),
			delta,
			strconv.Itoa(row.HeartRate.Min),
			fmt.Sprintf("%.2f", row.HeartRate.Avg),
			strconv.Itoa(row.HeartRate.Max),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := r.Summarize()
	_, err := fmt.Fprintf(w,
		"Files: %d accepted, %d rejected | Mean estimate %.2f | Mean reference %.2f | Mean |delta| %.2f | Elapsed %s\n",
		s.Files, r.Rejected, s.MeanEstimate, s.MeanReference, s.MeanAbsoluteDelta, r.Elapsed.Round(time.Millisecond),
	)
	return err
}

func writeResearchJSON(w io.Writer, r Research) error {
	payload := struct {
		Research
		Summary        Summary `json:"summary"`
		ElapsedSeconds float64 `json:"elapsed_seconds"`
	}{
		Research:       r,
		Summary:        r.Summarize(),
		ElapsedSeconds: r.Elapsed.Seconds(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
