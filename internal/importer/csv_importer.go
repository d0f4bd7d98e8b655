// Package importer loads the activity-type and voucher catalogs from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
)

// CatalogWriter is the subset of the catalog service the importer needs
type CatalogWriter interface {
	CreateActivityType(ctx context.Context, activityType *models.ActivityType) (*models.ActivityType, error)
	CreateVoucher(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error)
}

// Result summarises one import run. Rows that fail are reported and skipped.
type Result struct {
	TotalRows int      `json:"total_rows"`
	Created   int      `json:"created"`
	Errors    []string `json:"errors"`
}

func (r *Result) fail(row int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: ", row)+fmt.Sprintf(format, args...))
}

// CSVImporter creates catalog entries from CSV rows
type CSVImporter struct {
	catalog CatalogWriter
}

// NewCSVImporter creates a new CSVImporter
func NewCSVImporter(catalog CatalogWriter) *CSVImporter {
	return &CSVImporter{catalog: catalog}
}

// ImportActivityTypes reads columns name, description, unit, points_per_unit,
// carbon_factor, requires_photo, daily_limit and icon. Header names are
// matched case-insensitively and a few aliases are accepted.
func (i *CSVImporter) ImportActivityTypes(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := columns{
		"name":            findColumnIndex(header, []string{"name", "Activity", "Activity Name"}),
		"description":     findColumnIndex(header, []string{"description"}),
		"unit":            findColumnIndex(header, []string{"unit"}),
		"points_per_unit": findColumnIndex(header, []string{"points_per_unit", "Points Per Unit", "points"}),
		"carbon_factor":   findColumnIndex(header, []string{"carbon_factor", "Carbon Factor", "kg_co2_per_unit"}),
		"requires_photo":  findColumnIndex(header, []string{"requires_photo", "Requires Photo"}),
		"daily_limit":     findColumnIndex(header, []string{"daily_limit", "Daily Limit"}),
		"icon":            findColumnIndex(header, []string{"icon"}),
	}
	if err := cols.require("name", "unit", "points_per_unit", "carbon_factor"); err != nil {
		return nil, err
	}

	result := &Result{Errors: []string{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalRows++
		if err != nil {
			result.fail(result.TotalRows, "error reading row: %v", err)
			continue
		}

		activityType := &models.ActivityType{
			Name:        cols.get(row, "name"),
			Description: cols.get(row, "description"),
			Unit:        cols.get(row, "unit"),
			Icon:        models.ActivityIcon(cols.get(row, "icon")),
		}
		if activityType.PointsPerUnit, err = parseFloat(cols.get(row, "points_per_unit")); err != nil {
			result.fail(result.TotalRows, "invalid points_per_unit: %v", err)
			continue
		}
		if activityType.CarbonFactor, err = parseFloat(cols.get(row, "carbon_factor")); err != nil {
			result.fail(result.TotalRows, "invalid carbon_factor: %v", err)
			continue
		}
		if activityType.DailyLimit, err = parseInt(cols.get(row, "daily_limit")); err != nil {
			result.fail(result.TotalRows, "invalid daily_limit: %v", err)
			continue
		}
		activityType.RequiresPhoto = parseBool(cols.get(row, "requires_photo"))

		if _, err := i.catalog.CreateActivityType(ctx, activityType); err != nil {
			result.fail(result.TotalRows, "%s: %v", activityType.Name, err)
			continue
		}
		result.Created++
	}

	return result, nil
}

// ImportVouchers reads columns name, description, company_name, company_logo,
// points_required, value_amount, remaining, total_available, expires_at and
// is_active. is_active defaults to true when the column is absent or empty.
func (i *CSVImporter) ImportVouchers(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := columns{
		"name":            findColumnIndex(header, []string{"name", "Voucher", "Voucher Name"}),
		"description":     findColumnIndex(header, []string{"description"}),
		"company_name":    findColumnIndex(header, []string{"company_name", "Company", "Company Name"}),
		"company_logo":    findColumnIndex(header, []string{"company_logo", "Logo"}),
		"points_required": findColumnIndex(header, []string{"points_required", "Points Required", "points"}),
		"value_amount":    findColumnIndex(header, []string{"value_amount", "Value"}),
		"remaining":       findColumnIndex(header, []string{"remaining", "Quantity", "Stock"}),
		"total_available": findColumnIndex(header, []string{"total_available", "Total"}),
		"expires_at":      findColumnIndex(header, []string{"expires_at", "Expiry", "Expiry Date"}),
		"is_active":       findColumnIndex(header, []string{"is_active", "Active"}),
	}
	if err := cols.require("name", "company_name", "points_required", "remaining"); err != nil {
		return nil, err
	}

	result := &Result{Errors: []string{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalRows++
		if err != nil {
			result.fail(result.TotalRows, "error reading row: %v", err)
			continue
		}

		voucher := &models.Voucher{
			Name:        cols.get(row, "name"),
			Description: cols.get(row, "description"),
			CompanyName: cols.get(row, "company_name"),
			CompanyLogo: cols.get(row, "company_logo"),
			IsActive:    true,
		}
		if voucher.PointsRequired, err = parseInt64(cols.get(row, "points_required")); err != nil {
			result.fail(result.TotalRows, "invalid points_required: %v", err)
			continue
		}
		if voucher.Remaining, err = parseInt64(cols.get(row, "remaining")); err != nil {
			result.fail(result.TotalRows, "invalid remaining: %v", err)
			continue
		}
		if voucher.TotalAvailable, err = parseInt64(cols.get(row, "total_available")); err != nil {
			result.fail(result.TotalRows, "invalid total_available: %v", err)
			continue
		}
		if v := cols.get(row, "value_amount"); v != "" {
			amount, err := parseFloat(v)
			if err != nil {
				result.fail(result.TotalRows, "invalid value_amount: %v", err)
				continue
			}
			voucher.ValueAmount = &amount
		}
		if v := cols.get(row, "expires_at"); v != "" {
			expiresAt, err := parseDate(v)
			if err != nil {
				result.fail(result.TotalRows, "%v", err)
				continue
			}
			voucher.ExpiresAt = &expiresAt
		}
		if v := cols.get(row, "is_active"); v != "" {
			voucher.IsActive = parseBool(v)
		}

		if _, err := i.catalog.CreateVoucher(ctx, voucher); err != nil {
			result.fail(result.TotalRows, "%s: %v", voucher.Name, err)
			continue
		}
		result.Created++
	}

	return result, nil
}

// columns maps a logical field to its index in the header, -1 when absent
type columns map[string]int

func (c columns) require(names ...string) error {
	for _, name := range names {
		if c[name] == -1 {
			return fmt.Errorf("%s column not found in CSV", name)
		}
	}
	return nil
}

func (c columns) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseInt treats an empty cell as zero
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}

// parseDate parses a date string in various formats. Dates without a zone are UTC.
func parseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)

	formats := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"02/01/2006",
		"Jan 2, 2006",
		"2 Jan 2006",
	}

	for _, format := range formats {
		date, err := time.Parse(format, dateStr)
		if err == nil {
			return date.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
