package attendance

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	dailySheet     = "Attendance"
	ReportFilename = "Complete_Attendance_Report.xlsx"
	XLSXMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{"Date", "Course", "Student", "Status"}

// DailyFilename is the name of the single day export.
func DailyFilename(date string) string {
	return fmt.Sprintf("Attendance_%s.xlsx", date)
}

type sheet struct {
	name    string
	records []Record
}

// splitByDate groups records into one sheet per distinct date, sorted ascending.
func splitByDate(records []Record) []sheet {
	byDate := make(map[string][]Record)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	sheets := make([]sheet, 0, len(dates))
	for _, d := range dates {
		sheets = append(sheets, sheet{name: d, records: byDate[d]})
	}
	return sheets
}

// writeWorkbook writes the sheets as an xlsx workbook; courseTitles resolves course IDs.
func writeWorkbook(w io.Writer, sheets []sheet, courseTitles map[string]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sh.name); err != nil {
				return errors.Wrap(err, "naming sheet")
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return errors.Wrap(err, "creating sheet")
		}

		if err := f.SetSheetRow(sh.name, "A1", &exportHeader); err != nil {
			return errors.Wrap(err, "writing header")
		}
		for i, r := range sh.records {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			row := []interface{}{r.Date, courseTitles[r.CourseID], r.StudentName, r.Status.Label()}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return errors.Wrap(err, "writing row")
			}
		}
	}
	f.SetActiveSheet(0)

	return errors.Wrap(f.Write(w), "writing workbook")
}
