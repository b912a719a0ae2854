package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/pricing"
)

const summarySheet = "Summary"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet plus one sheet per waste category that has requests.
func (g *Generator) Generate(report model.CollectionReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, report)

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range report.Groups {
		if len(group.Requests) == 0 {
			continue
		}
		sheetName := buildSheetName(group.Category, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeDetail(file, sheetName, report, group)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.CollectionReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Site")
	set("B1", report.SiteTitle)
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))
	set("A3", "Citizens served")
	set("B3", report.Stats.UniqueUsers)
	set("A4", "Requests today")
	set("B4", report.Stats.TodayRequests)
	set("A5", "Recycled, kg")
	set("B5", report.Stats.TotalRecycled)
	set("A6", "Pending")
	set("B6", report.Pending)
	set("A7", "Collected")
	set("B7", report.Collected)

	tableRow := 9
	set(fmt.Sprintf("A%d", tableRow), "Waste type")
	set(fmt.Sprintf("B%d", tableRow), "Rate per kg")
	set(fmt.Sprintf("C%d", tableRow), "Requests")
	set(fmt.Sprintf("D%d", tableRow), "Weight, kg")
	set(fmt.Sprintf("E%d", tableRow), "Amount")

	for i, group := range report.Groups {
		row := tableRow + 1 + i
		perKg, _ := pricing.Rate(group.Category)
		set(fmt.Sprintf("A%d", row), group.Category)
		set(fmt.Sprintf("B%d", row), formatAmount(perKg))
		set(fmt.Sprintf("C%d", row), len(group.Requests))
		set(fmt.Sprintf("D%d", row), formatWeight(group.TotalWeight))
		set(fmt.Sprintf("E%d", row), formatAmount(group.TotalPrice))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "E", 16)
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, report model.CollectionReport, group model.CategoryGroup) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Waste type")
	set("B1", group.Category)
	set("A2", "Requests")
	set("B2", len(group.Requests))
	set("A3", "Weight, kg")
	set("B3", formatWeight(group.TotalWeight))

	tableRow := 5
	headers := []string{
		"Request",
		"Date",
		"Name",
		"Phone",
		"Area",
		"Address",
		"Weight, kg",
		"Price",
		"Status",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	loc := report.GeneratedAt.Location()
	for i, req := range group.Requests {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), req.ID)
		set(fmt.Sprintf("B%d", row), formatDateTime(req.CreatedAt.In(loc)))
		set(fmt.Sprintf("C%d", row), req.Name)
		set(fmt.Sprintf("D%d", row), req.Phone)
		set(fmt.Sprintf("E%d", row), req.Area)
		set(fmt.Sprintf("F%d", row), req.Address)
		set(fmt.Sprintf("G%d", row), formatWeight(req.Weight))
		set(fmt.Sprintf("H%d", row), formatAmount(req.Price))
		set(fmt.Sprintf("I%d", row), req.Status.Label())
	}

	_ = file.SetColWidth(sheet, "A", "B", 18)
	_ = file.SetColWidth(sheet, "C", "E", 20)
	_ = file.SetColWidth(sheet, "F", "F", 36)
	_ = file.SetColWidth(sheet, "G", "I", 12)
}

func buildSheetName(category string, used map[string]struct{}) string {
	base := sanitizeSheetName(category)
	if len([]rune(base)) > 31 {
		base = string([]rune(base)[:31])
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := []rune(base)
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = string(trimmed) + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Other"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Other"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatWeight(value float64) string {
	return fmt.Sprintf("%.3f", value)
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
