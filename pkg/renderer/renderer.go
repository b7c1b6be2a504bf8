package renderer

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/units"
)

// ParameterRows builds the parameter table, header first
func ParameterRows(ds *models.LogDataset, columns []string) [][]string {
	data := [][]string{
		{"Key", "Name", "Unit", "Numeric", "Time"},
	}

	for _, col := range columns {
		name := ds.DisplayName(col)
		data = append(data, []string{
			col,
			name,
			units.ExtractUnit(name),
			yesNo(ds.IsNumeric(col)),
			yesNo(ds.IsTime(col)),
		})
	}

	return data
}

// DisplayDataset prints a header describing the log followed by its parameters
func DisplayDataset(ds *models.LogDataset, columns []string) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println("Engine Log - " + filepath.Base(ds.Source()))

	if ds.Metadata() != "" {
		pterm.Info.Println(ds.Metadata())
	}
	pterm.Info.Printf("%d rows, %d parameters (%d numeric, %d time)\n",
		ds.Len(), len(ds.Columns()), len(ds.NumericColumns()), len(ds.TimeColumns()))
	if x := ds.DefaultXColumn(); x != "" {
		pterm.Info.Printf("Default x axis: %s\n", ds.DisplayName(x))
	}
	pterm.Println()

	if len(columns) == 0 {
		pterm.Warning.Println("No parameters match")
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(ParameterRows(ds, columns)).Render()
}

// ListCategories displays the parameter categories in a table
func ListCategories() {
	pterm.DefaultHeader.WithFullWidth().Println("Parameter Categories")

	data := [][]string{
		{"Category", "Parameters"},
	}
	for _, cat := range models.Categories {
		data = append(data, []string{cat.Name, strings.Join(cat.Columns, ", ")})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// SummaryTree describes a plot as subplots and their traces
func SummaryTree(spec *models.PlotSpec) pterm.TreeNode {
	root := pterm.TreeNode{
		Text: fmt.Sprintf("%s (x: %s, %d points)", spec.Title, spec.X.Name, len(spec.X.Values)),
	}

	for _, g := range spec.Groups {
		lo, hi := findMinMax(g)
		node := pterm.TreeNode{Text: g.Title}
		if !math.IsNaN(lo) {
			node.Text += fmt.Sprintf(" | Range: %.2f-%.2f", lo, hi)
		}
		for _, tr := range g.Traces {
			node.Children = append(node.Children, pterm.TreeNode{
				Text: fmt.Sprintf("%s [%s]", tr.Name, tr.Column),
			})
		}
		root.Children = append(root.Children, node)
	}

	return root
}

// RenderPlotSummary prints the subplot layout of a plot spec
func RenderPlotSummary(spec *models.PlotSpec) {
	pterm.DefaultSection.Println(spec.Title)
	if spec.Temperature == models.Celsius {
		pterm.Info.Println("Temperatures converted to Celsius")
	}
	pterm.DefaultTree.WithRoot(SummaryTree(spec)).Render()
}

// findMinMax finds the range of a group's traces, skipping gaps.
// Both results are NaN when the group has no values.
func findMinMax(g models.UnitGroup) (float64, float64) {
	min, max := math.NaN(), math.NaN()

	for _, tr := range g.Traces {
		for _, val := range tr.Values {
			if math.IsNaN(val) {
				continue
			}
			if math.IsNaN(min) || val < min {
				min = val
			}
			if math.IsNaN(max) || val > max {
				max = val
			}
		}
	}

	return min, max
}

func yesNo(b bool) string {
	if b {
		return pterm.FgGreen.Sprint("yes")
	}
	return pterm.FgGray.Sprint("no")
}
