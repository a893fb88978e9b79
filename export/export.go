// Package export writes search results and citation networks to XLSX
// workbooks for use outside the application.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lexsearch/citegraph/network"
	"github.com/lexsearch/citegraph/store"
)

const resultsSheet = "Results"

var resultHeader = []any{"ID", "Docket", "Title", "Level", "Canton", "Date", "Language", "URL", "Score"}

// SearchResults writes search hits to a single-sheet workbook, one row
// per hit, header row first.
func SearchResults(w io.Writer, hits []store.Hit) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, h := range hits {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		row := []any{h.ID, h.Docket, h.Title, h.Level, h.Canton, h.DecisionDate, h.Language, h.URL, h.Score}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

const (
	nodesSheet = "Nodes"
	edgesSheet = "Edges"
)

var (
	nodeHeader = []any{"ID", "Label", "Level", "Date", "Focal"}
	edgeHeader = []any{"Source", "Target", "Kind"}
)

// Network writes a citation graph to a two-sheet workbook: one sheet of
// nodes and one of directed edges.
func Network(w io.Writer, g *network.Graph) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", nodesSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(edgesSheet); err != nil {
		return fmt.Errorf("creating edges sheet: %w", err)
	}

	if err := f.SetSheetRow(nodesSheet, "A1", &nodeHeader); err != nil {
		return fmt.Errorf("writing node header: %w", err)
	}
	for i, n := range g.Nodes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		row := []any{n.ID, n.Label, string(n.Level), n.Date, n.Focal}
		if err := f.SetSheetRow(nodesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing node row %d: %w", i+2, err)
		}
	}

	if err := f.SetSheetRow(edgesSheet, "A1", &edgeHeader); err != nil {
		return fmt.Errorf("writing edge header: %w", err)
	}
	for i, e := range g.Edges {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		row := []any{e.SourceID, e.TargetID, string(e.Kind)}
		if err := f.SetSheetRow(edgesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing edge row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
