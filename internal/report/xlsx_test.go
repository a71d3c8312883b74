package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/sourcing-engine/internal/batch"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	qtySent := 100
	supplierQty := 1025
	outcomes := []batch.Outcome{
		{
			LineNumber:   1,
			PartNumber:   "LM358N",
			QtyRequested: 100,
			QtySent:      &qtySent,
			Supplier:     "Alpha",
			Region:       enums.RegionAmericas,
			SupplierQty:  &supplierQty,
			MinOrderValue: decimal.NullDecimal{
				Decimal: decimal.RequireFromString("150"), Valid: true,
			},
			Status:    enums.OutcomeSent,
			WorkerID:  2,
			Timestamp: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			LineNumber:   2,
			PartNumber:   "NE555P",
			QtyRequested: 50,
			Status:       enums.OutcomeNoSuppliers,
			Timestamp:    time.Date(2026, 8, 15, 10, 1, 0, 0, time.UTC),
		},
	}

	path := filepath.Join(t.TempDir(), "results.xlsx")
	if err := WriteWorkbook(path, "1008627", outcomes); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != "RFQ 1008627 Results" {
		t.Fatalf("unexpected sheet name %q", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Line" || rows[0][14] != "Status" {
		t.Fatalf("unexpected headers %v", rows[0])
	}
	if rows[1][2] != "LM358N" || rows[1][14] != "SENT" {
		t.Fatalf("unexpected first data row %v", rows[1])
	}
	if rows[1][8] != "150" {
		t.Fatalf("expected min order value in column 9, got %q", rows[1][8])
	}
	if rows[2][14] != "NO_SUPPLIERS" {
		t.Fatalf("unexpected second data row %v", rows[2])
	}
}
