package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"podocs/internal"
)

func ExportVerdictRowsToXLSX(rows []internal.VerdictExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"doc_index", "page_start", "page_end",
		"supplier_a", "po_primary_a", "po_numbers_a", "confidence_a", "method_a",
		"supplier_b", "po_primary_b", "po_numbers_b", "confidence_b", "method_b",
		"match_status", "decided_po", "decided_set", "status", "next_action", "reject_reason",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.DocIndex)
		set(2, row.PageStart)
		set(3, row.PageEnd)
		set(4, derefString(row.SupplierA))
		set(5, derefString(row.POPrimaryA))
		set(6, strings.Join(row.PONumbersA, ", "))
		set(7, row.ConfidenceA)
		set(8, row.MethodA)
		set(9, derefString(row.SupplierB))
		set(10, derefString(row.POPrimaryB))
		set(11, strings.Join(row.PONumbersB, ", "))
		set(12, row.ConfidenceB)
		set(13, row.MethodB)
		set(14, row.MatchStatus)
		set(15, derefString(row.DecidedPO))
		set(16, strings.Join(row.DecidedSet, ", "))
		set(17, row.Status)
		set(18, row.NextAction)
		set(19, derefString(row.Reason))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
