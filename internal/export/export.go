// Package export writes a grid view to an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var currencyFormat = "0.00"

// Workbook lays rows out under one header line. Number and currency columns
// are written as numbers, everything else as the grid displays it.
func Workbook(sheet string, headers []headcell.HeadCell, rows []record.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currencyFormat})
	if err != nil {
		return nil, fmt.Errorf("currency style: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h.Label); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headStyle); err != nil {
			return nil, err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width(h)); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		for i, h := range headers {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value(h, row)); err != nil {
				return nil, err
			}
			if h.Currency {
				if err := f.SetCellStyle(sheet, cell, cell, moneyStyle); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return nil, fmt.Errorf("auto filter: %w", err)
		}
	}
	return f, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, sheet string, headers []headcell.HeadCell, rows []record.Row) error {
	f, err := Workbook(sheet, headers, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func value(h headcell.HeadCell, row record.Row) any {
	if h.ComputeValue == nil && !h.IsArray() && (h.Currency || h.Type() == headcell.Number) {
		if n, ok := validation.ParseNumber(row.Get(h.Field)); ok {
			return n
		}
	}
	return h.Display(row)
}

func width(h headcell.HeadCell) float64 {
	switch {
	case h.IsArray():
		return 40
	case h.Currency, h.Type() == headcell.Number:
		return 12
	}
	return 20
}
