package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ride-analytics/internal/models"
)

func TestBuildWorkbook(t *testing.T) {
	svc := NewReportService(testLogger, testMetrics)

	trips := []*models.Trip{
		tripAt(pickup("Monday", 9), 18.52, 73.85, 10),
		tripAt(pickup("Monday", 10), 18.52, 73.85, 30),
	}
	snapshot := BuildSnapshot(trips)

	f, err := svc.BuildWorkbook(snapshot)
	if err != nil {
		t.Fatalf("BuildWorkbook() error = %v", err)
	}
	defer f.Close()

	wantSheets := []string{"Summary", "Hourly", "Weekly", "Popular Locations"}
	for _, sheet := range wantSheets {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("workbook missing sheet %q", sheet)
		}
	}

	totalRides, err := f.GetCellValue("Summary", "B2")
	if err != nil {
		t.Fatalf("GetCellValue(Summary!B2) error = %v", err)
	}
	if totalRides != "2" {
		t.Errorf("Summary!B2 = %q, want \"2\"", totalRides)
	}

	// Hourly sheet has a header plus all 24 hours.
	rows, err := f.GetRows("Hourly")
	if err != nil {
		t.Fatalf("GetRows(Hourly) error = %v", err)
	}
	if len(rows) != 25 {
		t.Errorf("Hourly sheet has %d rows, want 25", len(rows))
	}
}

func TestBuildWorkbook_EmptySnapshot(t *testing.T) {
	svc := NewReportService(testLogger, testMetrics)

	f, err := svc.BuildWorkbook(BuildSnapshot(nil))
	if err != nil {
		t.Fatalf("BuildWorkbook() on empty snapshot error = %v", err)
	}
	defer f.Close()

	averageFare, err := f.GetCellValue("Summary", "B3")
	if err != nil {
		t.Fatalf("GetCellValue(Summary!B3) error = %v", err)
	}
	if averageFare != "N/A" {
		t.Errorf("Summary!B3 = %q, want \"N/A\" for empty dataset", averageFare)
	}
}

func TestWriteReport(t *testing.T) {
	svc := NewReportService(testLogger, testMetrics)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	snapshot := BuildSnapshot([]*models.Trip{
		tripAt(pickup("Friday", 18), 18.52, 73.85, 42),
	})

	if err := svc.WriteReport(context.Background(), snapshot, path); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("report file is empty")
	}
}
