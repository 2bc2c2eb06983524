// Package export generates CSV and Excel downloads of leads.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/xuri/excelize/v2"
)

// exportMaxLeads bounds a single download.
const exportMaxLeads = 10000

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Service handles export business logic.
type Service struct {
	store     leads.Store
	userStore users.Store
}

// NewService creates a new export service.
func NewService(store leads.Store, userStore users.Store) *Service {
	return &Service{store: store, userStore: userStore}
}

// Filename returns the suggested download filename for a format.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("leads-%s.%s", now.Format("20060102-150405"), format)
}

// Export writes all leads visible to the actor in the given format. Scoping
// follows the same visibility rules as the list endpoint.
func (s *Service) Export(ctx context.Context, actor policy.Principal, format string, w io.Writer) error {
	if format != FormatCSV && format != FormatXLSX {
		return fmt.Errorf("%w: format must be csv or xlsx", leads.ErrValidation)
	}

	items, _, err := s.store.List(ctx, leads.ListFilter{
		Scope:    leads.ScopeFor(actor),
		Page:     1,
		PageSize: exportMaxLeads,
	})
	if err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}

	names, err := s.creatorNames(ctx, items)
	if err != nil {
		return err
	}

	if format == FormatCSV {
		return s.generateCSV(w, items, names)
	}
	return s.generateExcel(w, items, names)
}

// creatorNames resolves creator display names in one batch lookup.
func (s *Service) creatorNames(ctx context.Context, items []*leads.Lead) (map[string]string, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, l := range items {
		if l.CreatedBy != "" && !seen[l.CreatedBy] {
			seen[l.CreatedBy] = true
			ids = append(ids, l.CreatedBy)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	names, err := s.userStore.NamesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator names: %w", err)
	}
	return names, nil
}

var exportHeaders = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Status", "Buyer Code",
	"Application Type", "Lawsuit", "Created By", "Status Changes", "Created At",
}

func exportRow(l *leads.Lead, names map[string]string) []string {
	creator := users.SystemName
	if name, ok := names[l.CreatedBy]; ok {
		creator = name
	}
	return []string{
		l.ID,
		l.FirstName,
		l.LastName,
		l.Email,
		l.Phone,
		string(l.Status),
		l.BuyerCode,
		l.ApplicationType,
		l.Lawsuit,
		creator,
		strconv.Itoa(len(l.StatusHistory)),
		l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// generateCSV writes leads as CSV.
func (s *Service) generateCSV(w io.Writer, items []*leads.Lead, names map[string]string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range items {
		if err := writer.Write(exportRow(l, names)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// generateExcel writes leads as an XLSX workbook.
func (s *Service) generateExcel(w io.Writer, items []*leads.Lead, names map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, l := range items {
		row := rowIdx + 2
		for colIdx, value := range exportRow(l, names) {
			cell := fmt.Sprintf("%c%d", 'A'+colIdx, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
