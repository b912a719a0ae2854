package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/waste-pickup/internal/model"
)

// The built-in fonts have no rupee glyph, so amounts are written as "Rs.".
const currency = "Rs."

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.CollectionReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(report.SiteTitle), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr("Waste pickup requests report, "+formatDateTime(report.GeneratedAt)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Overview", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	lines := []string{
		fmt.Sprintf("Citizens served: %d", report.Stats.UniqueUsers),
		fmt.Sprintf("Requests today: %d", report.Stats.TodayRequests),
		fmt.Sprintf("Recycled: %d kg", report.Stats.TotalRecycled),
		fmt.Sprintf("Pending: %d, collected: %d", report.Pending, report.Collected),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "By waste type", "", 1, "L", false, 0, "")
	colWidths := []float64{80, 30, 40, 45}
	drawTableRow(pdf, g.fontName, []string{"Waste type", "Requests", "Weight, kg", "Amount"}, colWidths, true)
	for _, group := range report.Groups {
		drawTableRow(pdf, g.fontName, []string{
			tr(group.Category),
			fmt.Sprintf("%d", len(group.Requests)),
			formatAmount(group.TotalWeight, 3),
			currency + " " + formatAmount(group.TotalPrice, 2),
		}, colWidths, false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Requests", "", 1, "L", false, 0, "")
	detailWidths := []float64{32, 28, 45, 32, 40, 40, 20, 30}
	drawTableRow(pdf, g.fontName, []string{"Request", "Date", "Name", "Phone", "Area", "Waste type", "kg", "Status"}, detailWidths, true)
	loc := report.GeneratedAt.Location()
	for _, group := range report.Groups {
		for _, req := range group.Requests {
			drawTableRow(pdf, g.fontName, []string{
				req.ID,
				formatDate(req.CreatedAt.In(loc)),
				tr(truncate(req.Name, 24)),
				tr(req.Phone),
				tr(truncate(req.Area, 20)),
				tr(truncate(req.WasteType, 20)),
				formatAmount(req.Weight, 2),
				req.Status.Label(),
			}, detailWidths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 && !header && isNumeric(col) {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func isNumeric(value string) bool {
	value = strings.TrimPrefix(value, currency+" ")
	if value == "" {
		return false
	}
	for _, r := range value {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "."
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}
