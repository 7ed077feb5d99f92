package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	m "relimport.dev/pkg/relimport/internal/model"
)

// ReportStore persists run summaries.
type ReportStore interface {
	SaveReport(path m.Path, report m.RunReport) error
	LoadReport(path m.Path) (m.RunReport, error)
}

// YAMLReportStore writes run reports as YAML documents.
type YAMLReportStore struct {
	now func() time.Time
}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{now: time.Now}
}

// SaveReport writes report to path, creating parent directories as needed.
// A zero GeneratedAt is filled with the current time.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.RunReport) error {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = s.now().UTC()
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads a report previously written by SaveReport.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.RunReport, error) {
	// #nosec G304 - report path is supplied by the user on purpose
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.RunReport{}, fmt.Errorf("read report: %w", err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("unmarshal report: %w", err)
	}

	return report, nil
}
