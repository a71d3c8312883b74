package requests

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	writeRow := func(rowIdx int, values []string) {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	writeRow(1, header)
	for i, row := range rows {
		writeRow(i+2, row)
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoadWorkbookFuzzyHeaders(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Part Number", "Qty", "CPC"},
		[][]string{
			{"LM358N", "1,000", "CPC-1"},
			{"NE555P", "5K", ""},
			{"", "100", ""},
			{"BAD-QTY", "call", ""},
		},
	)

	parts, err := LoadWorkbook(path)
	if err != nil {
		t.Fatalf("load workbook: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].PartNumber != "LM358N" || parts[0].Quantity != 1000 {
		t.Fatalf("unexpected first part %+v", parts[0])
	}
	if parts[0].CustomerPartCode != "CPC-1" {
		t.Fatalf("expected CPC carried through, got %q", parts[0].CustomerPartCode)
	}
	if parts[1].PartNumber != "NE555P" || parts[1].Quantity != 5000 {
		t.Fatalf("unexpected second part %+v", parts[1])
	}
	if parts[0].LineNumber != 1 || parts[1].LineNumber != 2 {
		t.Fatalf("line numbers should count usable rows, got %d and %d", parts[0].LineNumber, parts[1].LineNumber)
	}
}

func TestLoadWorkbookHeaderlessFallback(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"A", "B"},
		[][]string{
			{"LM358N", "250"},
		},
	)

	parts, err := LoadWorkbook(path)
	if err != nil {
		t.Fatalf("load workbook: %v", err)
	}
	if len(parts) != 1 || parts[0].PartNumber != "LM358N" || parts[0].Quantity != 250 {
		t.Fatalf("unexpected parts %+v", parts)
	}
}

func TestLoadWorkbookEmptyFails(t *testing.T) {
	path := writeWorkbook(t, []string{"Part Number", "Qty"}, nil)
	if _, err := LoadWorkbook(path); err == nil {
		t.Fatalf("expected error for workbook without data rows")
	}
}

func TestValidate(t *testing.T) {
	good := PartRequest{LineNumber: 1, PartNumber: "LM358N", Quantity: 100}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := []PartRequest{
		{LineNumber: 1, PartNumber: "", Quantity: 100},
		{LineNumber: 2, PartNumber: "LM358N", Quantity: 0},
	}
	for _, req := range bad {
		if err := req.Validate(); err == nil {
			t.Errorf("expected validation failure for %+v", req)
		}
	}
	if err := ValidateAll([]PartRequest{good, bad[0]}); err == nil {
		t.Fatalf("ValidateAll should fail on the bad line")
	}
}
