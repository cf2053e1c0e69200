// Package export builds xlsx workbooks of the portal's data for owners who
// live in spreadsheets.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"fieldesk/internal/models"
	"fieldesk/internal/timeutil"
)

var bookingHeaders = []string{"ID", "Name", "Phone", "Email", "Starts", "Note", "Completed"}

// BookingsWorkbook writes the booking list to an xlsx file under dir and
// returns the file path. Start times render in the display zone.
func BookingsWorkbook(bookings []models.Booking, dir string, zone *time.Location) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for col, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for i, b := range bookings {
		row := i + 2
		completed := ""
		if b.Completed {
			completed = "yes"
		}
		values := []any{
			b.ID,
			b.Name,
			b.Phone,
			b.Email,
			timeutil.FormatForDisplay(b.StartsAt, zone),
			b.Note,
			completed,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "G", 22)
	_ = f.DeleteSheet("Sheet1")

	path := filepath.Join(dir, fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// FinanceWorkbook writes a P&L summary sheet.
func FinanceWorkbook(summary *models.FinanceSummary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]any{
		{"Range", summary.Range},
		{"Revenue", summary.RevenueTotal},
		{"Costs", summary.CostTotal},
		{"Gross profit", summary.GrossProfit},
		{"Margin %", summary.MarginPct},
	}
	for i, pair := range rows {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	row := len(rows) + 2
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "By source")
	row++
	for source, amount := range summary.BySource {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), source)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), amount)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "B", 20)
	_ = f.DeleteSheet("Sheet1")

	path := filepath.Join(dir, fmt.Sprintf("finance_%s_%s.xlsx", summary.Range, time.Now().Format("2006-01-02")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
