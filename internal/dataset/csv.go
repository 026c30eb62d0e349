package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// header is the required CSV column order.
var header = []string{
	"species",
	"island",
	"bill_length_mm",
	"bill_depth_mm",
	"flipper_length_mm",
	"body_mass_g",
	"sex",
}

// ReadCSV reads records from CSV data with the schema header
// species,island,bill_length_mm,bill_depth_mm,flipper_length_mm,body_mass_g,sex.
//
// Empty cells and the tokens NA and NaN (any case) are missing values.
// Malformed rows are errors, not skips.
func ReadCSV(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)

	columns, err := reader.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeader(columns); err != nil {
		return Dataset{}, err
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Dataset{}, fmt.Errorf("read csv row %d: %w", line, err)
		}

		record, err := parseRow(row)
		if err != nil {
			return Dataset{}, fmt.Errorf("parse csv row %d: %w", line, err)
		}
		records = append(records, record)
	}

	return Dataset{Records: records}, nil
}

// ReadCSVFile reads records from a CSV file at path.
func ReadCSVFile(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset file: %w", err)
	}
	defer file.Close()

	dataset, err := ReadCSV(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset file %s: %w", path, err)
	}
	return dataset, nil
}

func checkHeader(columns []string) error {
	if len(columns) != len(header) {
		return fmt.Errorf("csv header has %d columns, want %d", len(columns), len(header))
	}
	for i, column := range columns {
		if strings.TrimSpace(column) != header[i] {
			return fmt.Errorf("csv header column %d is %q, want %q", i, column, header[i])
		}
	}
	return nil
}

func parseRow(row []string) (Record, error) {
	if len(row) != len(header) {
		return Record{}, fmt.Errorf("row has %d columns, want %d", len(row), len(header))
	}

	record := Record{
		Species: parseCategorical(row[0]),
		Island:  parseCategorical(row[1]),
		Sex:     parseCategorical(row[6]),
	}

	measurements := []struct {
		name  string
		value string
		dst   *float64
	}{
		{name: "bill_length_mm", value: row[2], dst: &record.BillLengthMM},
		{name: "bill_depth_mm", value: row[3], dst: &record.BillDepthMM},
		{name: "flipper_length_mm", value: row[4], dst: &record.FlipperLengthMM},
		{name: "body_mass_g", value: row[5], dst: &record.BodyMassG},
	}
	for _, measurement := range measurements {
		value, err := parseMeasurement(measurement.value)
		if err != nil {
			return Record{}, fmt.Errorf("column %s: %w", measurement.name, err)
		}
		*measurement.dst = value
	}

	return record, nil
}

func parseCategorical(cell string) string {
	cell = strings.TrimSpace(cell)
	if isMissingToken(cell) {
		return ""
	}
	return cell
}

func parseMeasurement(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if isMissingToken(cell) {
		return math.NaN(), nil
	}
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("parse measurement %q: %w", cell, err)
	}
	return value, nil
}

func isMissingToken(cell string) bool {
	if cell == "" {
		return true
	}
	switch strings.ToLower(cell) {
	case "na", "nan":
		return true
	default:
		return false
	}
}
