package report

import (
	"fmt"
	"time"

	"github.com/angelmondragon/sourcing-engine/internal/batch"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/xuri/excelize/v2"
)

var resultHeaders = []string{
	"Line", "CPC", "Part Number", "Qty Requested", "Qty Sent", "Supplier",
	"Region", "Supplier Qty", "Min Order $", "Est Value $", "Qualifying",
	"Qual Amer", "Qual Eur", "Selected", "Status", "Timestamp", "Error", "Worker",
}

// WriteWorkbook exports the run's outcomes to a results spreadsheet, one
// row per outcome, with status rows tinted for quick scanning.
func WriteWorkbook(path string, runKey string, outcomes []batch.Outcome) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("RFQ %s Results", runKey)
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("building header style: %w", err)
	}
	sentStyle, err := statusStyle(f, "C6EFCE")
	if err != nil {
		return err
	}
	failedStyle, err := statusStyle(f, "FFC7CE")
	if err != nil {
		return err
	}
	omittedStyle, err := statusStyle(f, "FFE699")
	if err != nil {
		return err
	}

	for col, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}

	for i, out := range outcomes {
		row := i + 2
		values := []any{
			out.LineNumber,
			out.CustomerPartCode,
			out.PartNumber,
			out.QtyRequested,
			intOrBlank(out.QtySent),
			out.Supplier,
			string(out.Region),
			intOrBlank(out.SupplierQty),
			decimalOrBlank(out.MinOrderValue.Valid, out.MinOrderValue.Decimal.String),
			decimalOrBlank(out.EstimatedValue.Valid, out.EstimatedValue.Decimal.String),
			out.QualifyingTotal,
			out.QualifyingAmericas,
			out.QualifyingEurope,
			out.SelectedCount,
			string(out.Status),
			out.Timestamp.Format(time.RFC3339),
			errorOrReason(out),
			out.WorkerID,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}

		statusCell, _ := excelize.CoordinatesToCellName(15, row)
		switch out.Status {
		case enums.OutcomeSent:
			_ = f.SetCellStyle(sheet, statusCell, statusCell, sentStyle)
		case enums.OutcomeFailed:
			_ = f.SetCellStyle(sheet, statusCell, statusCell, failedStyle)
		case enums.OutcomeOmitted:
			_ = f.SetCellStyle(sheet, statusCell, statusCell, omittedStyle)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %q: %w", path, err)
	}
	return nil
}

func statusStyle(f *excelize.File, color string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return 0, fmt.Errorf("building status style: %w", err)
	}
	return style, nil
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func decimalOrBlank(valid bool, format func() string) any {
	if !valid {
		return ""
	}
	return format()
}

func errorOrReason(out batch.Outcome) string {
	if out.ErrorDetail != "" {
		return out.ErrorDetail
	}
	return out.Reason
}
