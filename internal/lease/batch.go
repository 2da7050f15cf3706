package lease

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// BatchMode selects the per-row operation for ApplyCSV.
type BatchMode string

const (
	BatchReserve BatchMode = "reserve"
	BatchUpdate  BatchMode = "update"
)

// BatchResult aggregates the per-row outcomes of a batch run.
type BatchResult struct {
	Added  int
	Failed int
}

func (r BatchResult) String() string {
	return fmt.Sprintf("%d added, %d failed", r.Added, r.Failed)
}

// ApplyCSV streams rows from a CSV file and applies the selected
// operation to each. Required columns are validated before any row is
// processed. A row failure is counted and logged, never propagated; the
// remaining rows still run.
//
// Recognized columns: lease_name, ip, mac, hostname. Extra columns are
// ignored. When hostname is absent it falls back to lease_name and vice
// versa.
func (s *Synchronizer) ApplyCSV(ctx context.Context, path string, mode BatchMode) (BatchResult, error) {
	var result BatchResult

	required, err := requiredColumns(mode)
	if err != nil {
		return result, err
	}

	f, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return result, fmt.Errorf("CSV file %s is empty", path)
		}
		return result, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return result, fmt.Errorf("CSV must contain columns %s; found: %s",
				strings.Join(required, ", "), strings.Join(header, ", "))
		}
	}

	logger := s.logger().With("file", path, "mode", string(mode))
	logger.Info("starting batch operation")

	// Header is row 1.
	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed row", "row", rowNum, "error", err)
			result.Failed++
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		ip := field("ip")
		mac := field("mac")
		hostname := field("hostname")
		leaseName := field("lease_name")
		if hostname == "" {
			hostname = leaseName
		}
		if leaseName == "" {
			leaseName = hostname
		}

		switch mode {
		case BatchReserve:
			if ip == "" || mac == "" {
				logger.Warn("skipping row: missing ip or mac", "row", rowNum)
				result.Failed++
				continue
			}
			err = s.Reserve(ctx, ip, mac, hostname)
		case BatchUpdate:
			if leaseName == "" || ip == "" || mac == "" {
				logger.Warn("skipping row: missing lease_name, ip or mac", "row", rowNum)
				result.Failed++
				continue
			}
			err = s.Update(ctx, leaseName, ip, mac, hostname)
		}
		if err != nil {
			logger.Error("row failed", "row", rowNum, "ip", ip, "mac", mac, "error", err)
			result.Failed++
			continue
		}
		result.Added++
	}

	logger.Info("batch operation completed", "added", result.Added, "failed", result.Failed)
	return result, nil
}

func requiredColumns(mode BatchMode) ([]string, error) {
	switch mode {
	case BatchReserve:
		return []string{"ip", "mac"}, nil
	case BatchUpdate:
		return []string{"lease_name", "ip", "mac"}, nil
	default:
		return nil, fmt.Errorf("unknown batch mode %q", mode)
	}
}
