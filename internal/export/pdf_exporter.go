package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/limaJavier/timegrid/pkg/model"
)

// Longest label printed in a slot cell before it is cut
const maxLabelRunes = 14

// PDFExporter renders schedule grids into a timetable book, one landscape page per grid
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title page line and one table per grid
func (e *PDFExporter) Render(grids []*model.ScheduleGrid, title string) ([]byte, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("pdf requires at least one grid")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for _, grid := range grids {
		rows := grid.Rows()
		header, body := rows[0], rows[1:]

		pdf.AddPage()
		pdf.SetFont("Arial", "B", 13)
		heading := grid.SheetName()
		if title != "" {
			heading = fmt.Sprintf("%v - %v", strings.ToUpper(title), heading)
		}
		pdf.CellFormat(0, 9, heading, "", 1, "C", false, 0, "")
		pdf.Ln(3)

		dayWidth := 14.0
		slotWidth := (usable - dayWidth) / float64(len(header)-1)

		pdf.SetFont("Arial", "B", 5)
		for i, value := range header {
			pdf.CellFormat(width(i, dayWidth, slotWidth), 7, value, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 5)
		for _, row := range body {
			for i, value := range row {
				fill := value != model.FreeLabel && i > 0
				if value == model.LunchLabel {
					pdf.SetFillColor(220, 220, 220)
				} else {
					pdf.SetFillColor(235, 244, 255)
				}
				pdf.CellFormat(width(i, dayWidth, slotWidth), 12, truncate(value), "1", 0, "C", fill, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func width(column int, dayWidth, slotWidth float64) float64 {
	if column == 0 {
		return dayWidth
	}
	return slotWidth
}

func truncate(label string) string {
	if label == model.FreeLabel {
		return ""
	}
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:maxLabelRunes-1]) + "."
}
