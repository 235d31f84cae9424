package store

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/xuri/excelize/v2"
)

const commentsSheet = "comments"

// writeXLSX appends items to the comments sheet of path. The sheet is
// rewritten through a stream writer with a bold, frozen header row.
func writeXLSX(path string, items []Record) error {
	f, err := openWorkbook(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	prev, err := f.GetRows(commentsSheet)
	if err != nil {
		return err
	}
	header := items[0].CSVHeader()
	if len(prev) > 0 {
		if !slices.Equal(prev[0], header) {
			return fmt.Errorf("xlsx header mismatch for %s", filepath.Base(path))
		}
		prev = prev[1:]
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(commentsSheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, len(header), 18); err != nil {
		return err
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	row := 1
	put := func(values []string, opts ...excelize.RowOpts) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return sw.SetRow(cell, cells, opts...)
	}
	if err := put(header, excelize.RowOpts{StyleID: bold}); err != nil {
		return err
	}
	for _, r := range prev {
		if err := put(r); err != nil {
			return err
		}
	}
	for _, it := range items {
		if err := put(it.CSVRecord()); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// openWorkbook opens path, or starts a new workbook whose only sheet is the
// comments sheet.
func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), commentsSheet); err != nil {
			_ = f.Close()
			return nil, err
		}
		return f, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	if idx, _ := f.GetSheetIndex(commentsSheet); idx < 0 {
		if _, err := f.NewSheet(commentsSheet); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}
