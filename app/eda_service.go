package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

const headRows = 5

// Shape is the row and column count of a dataset
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// FieldStats summarises one numeric column
type FieldStats struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// EDAReport is the exploratory summary of a dataset. The text fields keep the
// layout clients of the upload page already render.
type EDAReport struct {
	Shape             Shape          `json:"shape"`
	Info              string         `json:"info"`
	Head              string         `json:"head"`
	NullValues        string         `json:"null_values"`
	NullCounts        map[string]int `json:"null_counts"`
	NumericColumns    []string       `json:"numeric_columns"`
	Correlation       [][]float64    `json:"correlation"`
	FeatureImportance string         `json:"feature_importance"`
	Importance        []Importance   `json:"importance"`
	Summary           []FieldStats   `json:"summary"`
}

// Importance is the mean absolute correlation of a column with the other numeric columns
type Importance struct {
	Column string  `json:"column"`
	Score  float64 `json:"score"`
}

// EDAService computes exploratory statistics for stored datasets
type EDAService struct {
	loader ports.DatasetLoader
}

// NewEDAService creates an EDA service reading through loader
func NewEDAService(loader ports.DatasetLoader) *EDAService {
	return &EDAService{loader: loader}
}

// Analyze loads ref and builds its report. A dataset without rows is an EmptyDataset error.
func (s *EDAService) Analyze(ctx context.Context, ref string) (*EDAReport, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, core.NewMissingParameterError("filename")
	}
	start := time.Now()

	table, err := s.loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if table.RowCount() == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyDataset, ref)
	}

	report := BuildReport(table)
	log.Printf("[EDAService] Analyzed %s (%d x %d, %d numeric) in %.2fms",
		ref, report.Shape.Rows, report.Shape.Cols, len(report.NumericColumns), float64(time.Since(start).Nanoseconds())/1e6)
	return report, nil
}

// BuildReport computes the report for a loaded table
func BuildReport(table *dataset.Table) *EDAReport {
	report := &EDAReport{
		Shape:      Shape{Rows: table.RowCount(), Cols: len(table.Columns)},
		NullCounts: make(map[string]int, len(table.Columns)),
	}

	var info strings.Builder
	fmt.Fprintf(&info, "Dataset Info:\nRows: %d\nColumns: %d\n\nData Types:\n", report.Shape.Rows, report.Shape.Cols)
	var nulls strings.Builder
	nulls.WriteString("Missing Values:\n")
	var numeric []*dataset.Column
	for i, col := range table.Columns {
		missing := col.MissingCount()
		report.NullCounts[col.Name] = missing
		fmt.Fprintf(&info, "%s: %s (%d non-null)", col.Name, dtypeName(col), col.Len()-missing)
		fmt.Fprintf(&nulls, "%s: %d", col.Name, missing)
		if i < len(table.Columns)-1 {
			info.WriteByte('\n')
			nulls.WriteByte('\n')
		}
		if col.IsNumeric() {
			numeric = append(numeric, col)
			report.NumericColumns = append(report.NumericColumns, col.Name)
			if summary, ok := summarize(col); ok {
				report.Summary = append(report.Summary, summary)
			}
		}
	}
	report.Info = info.String()
	report.NullValues = nulls.String()
	report.Head = "First 5 Rows:\n" + headJSON(table)

	report.Correlation = correlationMatrix(numeric)
	report.Importance = importance(report.NumericColumns, report.Correlation)
	var imp strings.Builder
	imp.WriteString("Feature Importance:")
	for _, item := range report.Importance {
		fmt.Fprintf(&imp, "\n%s: %.3f", item.Column, item.Score)
	}
	report.FeatureImportance = imp.String()
	return report
}

func dtypeName(col *dataset.Column) string {
	if col.IsNumeric() {
		return "float64"
	}
	return "object"
}

func summarize(col *dataset.Column) (FieldStats, bool) {
	data := stats.Float64Data(col.NonMissingFloats())
	if data.Len() == 0 {
		return FieldStats{}, false
	}
	summary := FieldStats{Name: col.Name, Count: data.Len()}
	summary.Mean, _ = data.Mean()
	summary.Min, _ = data.Min()
	summary.Max, _ = data.Max()
	summary.Median, _ = data.Median()
	if data.Len() > 1 {
		summary.StdDev, _ = data.StandardDeviationSample()
	}
	return summary, true
}

func headJSON(table *dataset.Table) string {
	n := min(headRows, table.RowCount())
	rows := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, len(table.Columns))
		for _, col := range table.Columns {
			v := col.Values[i]
			switch {
			case v.IsMissing():
				row[col.Name] = nil
			case v.IsNumeric() && !math.IsInf(v.Num, 0):
				row[col.Name] = v.Num
			default:
				row[col.Name] = v.String()
			}
		}
		rows[i] = row
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}

// correlationMatrix computes pairwise Pearson correlations over rows where both
// columns are present. Undefined coefficients (constant columns, fewer than two
// shared rows) are reported as 0.
func correlationMatrix(columns []*dataset.Column) [][]float64 {
	k := len(columns)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			var x, y []float64
			for r := range columns[i].Values {
				a, b := columns[i].Values[r], columns[j].Values[r]
				if a.IsNumeric() && b.IsNumeric() {
					x = append(x, a.Num)
					y = append(y, b.Num)
				}
			}
			c := 0.0
			if len(x) >= 2 {
				c = stat.Correlation(x, y, nil)
			}
			if math.IsNaN(c) || math.IsInf(c, 0) {
				c = 0
			}
			matrix[i][j], matrix[j][i] = c, c
		}
	}
	return matrix
}

// importance ranks columns by mean absolute correlation, highest first
func importance(names []string, corr [][]float64) []Importance {
	out := make([]Importance, len(names))
	for i, name := range names {
		sum := 0.0
		for j := range names {
			if i != j {
				sum += math.Abs(corr[i][j])
			}
		}
		score := 0.0
		if len(names) > 1 {
			score = sum / float64(len(names)-1)
		}
		out[i] = Importance{Column: name, Score: score}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

// Markdown renders the report as a markdown document
func (r *EDAReport) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Dataset report\n\n%d rows, %d columns\n\n", r.Shape.Rows, r.Shape.Cols)

	sb.WriteString("## Missing values\n\n| Column | Missing |\n|---|---|\n")
	for _, line := range strings.Split(strings.TrimPrefix(r.NullValues, "Missing Values:\n"), "\n") {
		if name, count, ok := strings.Cut(line, ": "); ok {
			fmt.Fprintf(&sb, "| %s | %s |\n", name, count)
		}
	}

	if len(r.Summary) > 0 {
		sb.WriteString("\n## Numeric columns\n\n| Column | Count | Mean | Std | Min | Median | Max |\n|---|---|---|---|---|---|---|\n")
		for _, f := range r.Summary {
			fmt.Fprintf(&sb, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n", f.Name, f.Count, f.Mean, f.StdDev, f.Min, f.Median, f.Max)
		}
	}

	if len(r.NumericColumns) > 1 {
		sb.WriteString("\n## Correlation\n\n| |")
		for _, name := range r.NumericColumns {
			fmt.Fprintf(&sb, " %s |", name)
		}
		sb.WriteString("\n|---|" + strings.Repeat("---|", len(r.NumericColumns)) + "\n")
		for i, name := range r.NumericColumns {
			fmt.Fprintf(&sb, "| %s |", name)
			for _, c := range r.Correlation[i] {
				fmt.Fprintf(&sb, " %.3f |", c)
			}
			sb.WriteByte('\n')
		}
	}

	if len(r.Importance) > 0 {
		sb.WriteString("\n## Feature importance\n\n")
		for _, item := range r.Importance {
			fmt.Fprintf(&sb, "- **%s**: %.3f\n", item.Column, item.Score)
		}
	}
	return sb.String()
}

// HTML renders the markdown report with tables enabled
func (r *EDAReport) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return bytes.TrimSpace(markdown.ToHTML([]byte(r.Markdown()), p, renderer))
}
