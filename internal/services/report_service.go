package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// ReportService renders an analytics snapshot as an Excel workbook, the
// tabular counterpart of the dashboard widgets.
type ReportService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewReportService creates a new report service
func NewReportService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ReportService {
	return &ReportService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// BuildWorkbook creates a workbook with Summary, Hourly, Weekly, and
// Popular Locations sheets from the given snapshot.
func (s *ReportService) BuildWorkbook(snapshot *Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	if err := writeSummarySheet(f, snapshot); err != nil {
		return nil, err
	}
	if err := writeHourlySheet(f, snapshot.Hourly); err != nil {
		return nil, err
	}
	if err := writeWeeklySheet(f, snapshot.Weekly); err != nil {
		return nil, err
	}
	if err := writeLocationsSheet(f, snapshot.PopularLocations); err != nil {
		return nil, err
	}

	return f, nil
}

// WriteReport builds the workbook and saves it to path.
func (s *ReportService) WriteReport(ctx context.Context, snapshot *Snapshot, path string) error {
	f, err := s.BuildWorkbook(snapshot)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info(ctx, "[REPORT_WRITTEN] Analytics report exported", logging.Fields{
		"path":        path,
		"total_rides": snapshot.Summary.TotalRides,
	})

	return nil
}

func writeSummarySheet(f *excelize.File, snapshot *Snapshot) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Rides", snapshot.Summary.TotalRides},
		{"Average Fare", floatOrNA(snapshot.Summary.AverageFare)},
		{"Average Distance (km)", floatOrNA(snapshot.Summary.AverageDistanceKm)},
		{"Busiest Hour", intOrNA(snapshot.Summary.BusiestHour)},
		{"Busiest Day", stringOrNA(snapshot.Summary.BusiestDay)},
		{"Generated At", snapshot.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	return writeRows(f, "Summary", rows)
}

func writeHourlySheet(f *excelize.File, hourly []HourlyCount) error {
	if _, err := f.NewSheet("Hourly"); err != nil {
		return fmt.Errorf("failed to create hourly sheet: %w", err)
	}

	rows := [][]interface{}{{"Hour", "Rides"}}
	for _, h := range hourly {
		rows = append(rows, []interface{}{h.Hour, h.Rides})
	}
	return writeRows(f, "Hourly", rows)
}

func writeWeeklySheet(f *excelize.File, weekly []DailyCount) error {
	if _, err := f.NewSheet("Weekly"); err != nil {
		return fmt.Errorf("failed to create weekly sheet: %w", err)
	}

	rows := [][]interface{}{{"Day", "Rides"}}
	for _, d := range weekly {
		rows = append(rows, []interface{}{d.Day, d.Rides})
	}
	return writeRows(f, "Weekly", rows)
}

func writeLocationsSheet(f *excelize.File, locations []PopularLocation) error {
	if _, err := f.NewSheet("Popular Locations"); err != nil {
		return fmt.Errorf("failed to create locations sheet: %w", err)
	}

	rows := [][]interface{}{{"Pickup Latitude", "Pickup Longitude", "Rides"}}
	for _, loc := range locations {
		rows = append(rows, []interface{}{loc.PickupLat, loc.PickupLon, loc.Rides})
	}
	return writeRows(f, "Popular Locations", rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func floatOrNA(v *float64) interface{} {
	if v == nil {
		return "N/A"
	}
	return *v
}

func intOrNA(v *int) interface{} {
	if v == nil {
		return "N/A"
	}
	return *v
}

func stringOrNA(v *string) interface{} {
	if v == nil {
		return "N/A"
	}
	return *v
}
