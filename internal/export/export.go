// Package export renders timesheets to files a freelancer can hand to a
// client: CSV for tooling, XLSX for humans.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/services"

	"github.com/xuri/excelize/v2"
)

const dateFormat = "2006-01-02"
const timeFormat = "15:04"

var columnHeaders = []string{"Date", "Start", "End", "Description", "Type", "Billable", "Hours", "Earnings"}

// Exporter writes timesheet data in the supported output formats.
type Exporter struct {
	reporting services.ReportingService
}

// NewExporter creates a new Exporter instance.
func NewExporter(reporting services.ReportingService) *Exporter {
	return &Exporter{reporting: reporting}
}

// WriteCSV writes the timesheet's entries as CSV rows. Running entries are
// skipped; an export is a statement of completed work.
func (e *Exporter) WriteCSV(w io.Writer, sheet *services.Timesheet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columnHeaders); err != nil {
		return errors.WrapError(err, errors.ErrorTypeInvalidInput, "write csv header")
	}

	for _, day := range sheet.Days {
		for _, entry := range day.Entries {
			row, ok := e.entryRow(entry)
			if !ok {
				continue
			}
			if err := writer.Write(row); err != nil {
				return errors.WrapError(err, errors.ErrorTypeInvalidInput, "write csv row")
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the timesheet as a spreadsheet with one row per entry
// and a totals row at the bottom.
func (e *Exporter) WriteXLSX(w io.Writer, sheet *services.Timesheet) error {
	file := excelize.NewFile()
	defer file.Close()

	sheetName := "Timesheet"
	index, err := file.NewSheet(sheetName)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeInvalidInput, "create worksheet")
	}
	file.SetActiveSheet(index)
	file.DeleteSheet("Sheet1")

	for col, header := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			return errors.WrapError(err, errors.ErrorTypeInvalidInput, "write header cell")
		}
	}

	rowNum := 2
	for _, day := range sheet.Days {
		for _, entry := range day.Entries {
			row, ok := e.entryRow(entry)
			if !ok {
				continue
			}
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
				if err := file.SetCellValue(sheetName, cell, value); err != nil {
					return errors.WrapError(err, errors.ErrorTypeInvalidInput, "write entry cell")
				}
			}
			rowNum++
		}
	}

	totals := []string{
		"Total", "", "", "", "", "",
		e.reporting.FormatDuration(time.Duration(sheet.TotalSeconds) * time.Second),
		e.reporting.FormatCurrency(sheet.EarningsCents),
	}
	for col, value := range totals {
		cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
		if err := file.SetCellValue(sheetName, cell, value); err != nil {
			return errors.WrapError(err, errors.ErrorTypeInvalidInput, "write totals cell")
		}
	}

	if err := file.Write(w); err != nil {
		return errors.WrapError(err, errors.ErrorTypeInvalidInput, "write workbook")
	}
	return nil
}

func (e *Exporter) entryRow(entry *domain.TimeEntry) ([]string, bool) {
	if entry.EndTime == nil || entry.DurationSeconds == nil {
		return nil, false
	}

	billable := "no"
	if entry.Billable {
		billable = "yes"
	}

	return []string{
		entry.StartTime.Format(dateFormat),
		entry.StartTime.Format(timeFormat),
		entry.EndTime.Format(timeFormat),
		entry.Description,
		string(entry.EntryType),
		billable,
		fmt.Sprintf("%.2f", float64(*entry.DurationSeconds)/3600),
		e.reporting.FormatCurrency(entry.EarningsCents()),
	}, true
}
