package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/parade-state/generic"
)

// Sheet pairs a table with the header to write above its rows.
type Sheet struct {
	Table  generic.Table
	Header []string
}

// Export copies every sheet into a fresh workbook and writes it to out.
func Export(ctx context.Context, out io.Writer, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		name := s.Table.Name()
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		header := s.Header
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", name, err)
		}
		if len(header) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(header), 1)
			if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
				return fmt.Errorf("failed to style header of %q: %w", name, err)
			}
		}

		rows, err := s.Table.ReadAll(ctx)
		if err != nil {
			return err
		}
		for j, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, j+1+generic.HeaderRows)
			cells := row.Cells
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return fmt.Errorf("failed to write %q row %d: %w", name, row.Number, err)
			}
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
