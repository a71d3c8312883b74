package requests

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads part requests from the first sheet of an Excel
// workbook. Columns are located by fuzzy header match on the first row;
// when no header matches, the first column is assumed to hold part numbers
// and the second quantities. Rows with unparseable quantities are skipped,
// matching how hand-built sourcing sheets tend to carry stray notes.
func LoadWorkbook(path string) ([]PartRequest, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %q has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook %q has no data rows", path)
	}

	partCol, qtyCol, cpcCol := locateColumns(rows[0])

	var parts []PartRequest
	line := 0
	for _, row := range rows[1:] {
		if partCol >= len(row) || qtyCol >= len(row) {
			continue
		}
		partNumber := strings.TrimSpace(row[partCol])
		if partNumber == "" {
			continue
		}
		qty, err := listings.ParseQuantity(row[qtyCol])
		if err != nil || qty <= 0 {
			continue
		}

		line++
		req := PartRequest{
			LineNumber: line,
			PartNumber: partNumber,
			Quantity:   qty,
		}
		if cpcCol >= 0 && cpcCol < len(row) {
			req.CustomerPartCode = strings.TrimSpace(row[cpcCol])
		}
		parts = append(parts, req)
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("workbook %q yielded no usable part requests", path)
	}
	return parts, nil
}

func locateColumns(header []string) (partCol, qtyCol, cpcCol int) {
	partCol, qtyCol, cpcCol = -1, -1, -1
	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case partCol < 0 && strings.Contains(h, "part") && strings.Contains(h, "number"):
			partCol = i
		case partCol < 0 && (h == "pn" || h == "part"):
			partCol = i
		case qtyCol < 0 && (strings.Contains(h, "qty") || strings.Contains(h, "quantity")):
			qtyCol = i
		case cpcCol < 0 && (h == "cpc" || strings.Contains(h, "customer part")):
			cpcCol = i
		}
	}
	if partCol < 0 {
		partCol = 0
	}
	if qtyCol < 0 {
		qtyCol = 1
	}
	return partCol, qtyCol, cpcCol
}
