package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/pricing"
)

type ExcelGenerator interface {
	Generate(report model.CollectionReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.CollectionReport) ([]byte, error)
}

type ReportService struct {
	excel ExcelGenerator
	pdf   PDFGenerator
	now   func() time.Time
}

type GenerateReportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(excel ExcelGenerator, pdf PDFGenerator) *ReportService {
	return &ReportService{
		excel: excel,
		pdf:   pdf,
		now:   time.Now,
	}
}

func (s *ReportService) GenerateExcel(d *Dashboard) (*GenerateReportResult, error) {
	report, err := s.buildReport(d)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{FileName: buildFileName(report, "xlsx"), Content: content}, nil
}

func (s *ReportService) GeneratePDF(d *Dashboard) (*GenerateReportResult, error) {
	report, err := s.buildReport(d)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(report)
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{FileName: buildFileName(report, "pdf"), Content: content}, nil
}

// buildReport exports exactly what the admin's dashboard currently mirrors.
func (s *ReportService) buildReport(d *Dashboard) (model.CollectionReport, error) {
	if !d.LoggedIn() {
		return model.CollectionReport{}, ErrPermissionDenied
	}
	snapshot := d.Snapshot()
	now := s.now().In(d.opts.Location)
	return BuildCollectionReport(snapshot, d.Branding().SiteTitle, now), nil
}

// BuildCollectionReport groups requests by waste category in rate-table order; categories outside
// the table follow in order of first appearance.
func BuildCollectionReport(requests []*model.WasteRequest, siteTitle string, now time.Time) model.CollectionReport {
	report := model.CollectionReport{
		SiteTitle:   siteTitle,
		GeneratedAt: now,
		Stats:       ComputeStats(requests, now),
	}

	index := make(map[string]int)
	for _, category := range pricing.Categories() {
		index[category] = len(report.Groups)
		report.Groups = append(report.Groups, model.CategoryGroup{Category: category})
	}

	for _, req := range requests {
		switch req.Status {
		case model.StatusPending:
			report.Pending++
		case model.StatusCollected:
			report.Collected++
		}

		pos, ok := index[req.WasteType]
		if !ok {
			pos = len(report.Groups)
			index[req.WasteType] = pos
			report.Groups = append(report.Groups, model.CategoryGroup{Category: req.WasteType})
		}
		group := &report.Groups[pos]
		group.Requests = append(group.Requests, req)
		group.TotalWeight += req.Weight
		group.TotalPrice += req.Price
	}

	return report
}

func buildFileName(report model.CollectionReport, ext string) string {
	site := sanitizeFileName(strings.ToLower(report.SiteTitle))
	if site == "" {
		site = "waste"
	}
	return fmt.Sprintf("pickup-requests-%s-%s.%s", site, report.GeneratedAt.Format("20060102-1504"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
