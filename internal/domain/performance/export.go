package performance

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	departmentSheet = "Departments"
	summarySheet    = "Summary"
)

var departmentHeader = []string{
	"Rank",
	"Department",
	"Hospital",
	"Avg LOS (days)",
	"Readmission %",
	"Mortality %",
	"Satisfaction",
	"Patients",
	"Rating",
	"Trend",
}

var departmentColumnWidths = []float64{8, 28, 28, 15, 15, 13, 13, 11, 9, 12}

// Workbook renders the department report as an XLSX workbook with a ranked
// department sheet and a cohort summary sheet.
func Workbook(d *Departments) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(departmentSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, departmentSheet, 1, toCells(departmentHeader)); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(departmentHeader), 1)
	if err := f.SetCellStyle(departmentSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}
	for i, w := range departmentColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(departmentSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, dep := range d.Departments {
		row := []interface{}{
			i + 1,
			dep.Department,
			dep.Hospital,
			dep.AvgLOS,
			dep.Readmission,
			dep.Mortality,
			dep.SatisfactionScore,
			dep.PatientCount,
			string(dep.Rating),
			string(dep.Trend),
		}
		if err := writeRow(f, departmentSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	topPerformer := ""
	if d.Summary.TopPerformer != nil {
		topPerformer = *d.Summary.TopPerformer
	}
	summary := [][]interface{}{
		{"Window (days)", d.Days},
		{"Generated", d.Timestamp.Format("2006-01-02 15:04:05")},
		{"Total departments", d.Summary.TotalDepartments},
		{"Average mortality %", d.Summary.AverageMortality},
		{"Average readmission %", d.Summary.AverageReadmission},
		{"Top performer", topPerformer},
	}
	for _, item := range d.Summary.NeedsAttention {
		summary = append(summary, []interface{}{"Needs attention", item.Department, string(item.Rating), string(item.Trend)})
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
