package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"prokat/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Бронирования"

var statusFills = map[models.Status]string{
	models.StatusWaiting:  "#FFEB9C",
	models.StatusApproved: "#C6EFCE",
	models.StatusRejected: "#FFC7CE",
}

// BuildBookingReport собирает Excel-отчет по бронированиям владельца:
// по строке на заявку, статусная заливка как в таблице синхронизации.
func BuildBookingReport(views []*models.BookingView) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Вещь", "Арендатор", "Начало", "Конец", "Статус"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, view := range views {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), view.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), view.Item.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), view.Booker.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), view.Start.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), view.End.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), string(view.Status))

		if fill, ok := statusFills[view.Status]; ok {
			style, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			})
			if err == nil {
				cell := fmt.Sprintf("F%d", row)
				_ = f.SetCellStyle(sheetName, cell, cell, style)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "F", 12)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

// WriteBookingReport пишет отчет в произвольный writer (HTTP-ответ).
func WriteBookingReport(w io.Writer, views []*models.BookingView) error {
	f, err := BuildBookingReport(views)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

// SaveBookingReport сохраняет отчет в каталог экспорта и возвращает путь.
func SaveBookingReport(dir string, views []*models.BookingView) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := BuildBookingReport(views)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}
