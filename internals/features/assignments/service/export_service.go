package service

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"district_platform/internals/features/assignments/dto"
)

// SubmissionCSV renders one submission as a two-column CSV. Quoting and
// escaping follow RFC 4180 via encoding/csv.
func SubmissionCSV(detail *dto.SubmissionDetailDTO) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	meta := [][]string{
		{"District", detail.DistrictName},
		{"Template", detail.TemplateName},
		{"Status", detail.Status},
	}
	if detail.SentAt != nil {
		meta = append(meta, []string{"Sent at", detail.SentAt.Format("2006-01-02 15:04:05")})
	}
	meta = append(meta, []string{})
	meta = append(meta, []string{"Field", "Value"})

	for _, rec := range meta {
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	for _, row := range detail.Values {
		if err := w.Write([]string{row.Label, row.Value}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SubmissionXLSX renders one submission as a single-sheet workbook.
func SubmissionXLSX(detail *dto.SubmissionDetailDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submission"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "District")
	f.SetCellValue(sheet, "B1", detail.DistrictName)
	f.SetCellValue(sheet, "A2", "Template")
	f.SetCellValue(sheet, "B2", detail.TemplateName)
	f.SetCellValue(sheet, "A3", "Status")
	f.SetCellValue(sheet, "B3", detail.Status)
	row := 4
	if detail.SentAt != nil {
		f.SetCellValue(sheet, "A4", "Sent at")
		f.SetCellValue(sheet, "B4", detail.SentAt.Format("2006-01-02 15:04:05"))
		row = 5
	}

	row++ // blank spacer row
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Field")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Value")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)

	for _, v := range detail.Values {
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), v.Label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), v.Value)
	}

	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
