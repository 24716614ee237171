// Package ingest loads lead batches from CSV and XLSX files and writes the
// consolidated verification results back out.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadverify/internal/model"
)

// headerSynonyms maps alternate header spellings seen in CRM and list
// exports to canonical field keys.
var headerSynonyms = map[string]string{
	"id":            model.FieldSourceID,
	"lead_id":       model.FieldSourceID,
	"record_id":     model.FieldSourceID,
	"name":          model.FieldFullName,
	"firstname":     model.FieldFirstName,
	"first":         model.FieldFirstName,
	"lastname":      model.FieldLastName,
	"last":          model.FieldLastName,
	"organization":  model.FieldCompany,
	"company_name":  model.FieldCompany,
	"employer":      model.FieldCompany,
	"email_address": model.FieldEmail,
	"primary_email": model.FieldEmail,
	"emails":        model.FieldEmail,
	"phone_number":  model.FieldPhone,
	"primary_phone": model.FieldPhone,
	"phones":        model.FieldPhone,
}

var canonicalFields = map[string]bool{
	model.FieldSourceID:  true,
	model.FieldFullName:  true,
	model.FieldFirstName: true,
	model.FieldLastName:  true,
	model.FieldCompany:   true,
	model.FieldAddress:   true,
	model.FieldCity:      true,
	model.FieldState:     true,
	model.FieldPhone:     true,
	model.FieldEmail:     true,
}

// LoadLeads reads a lead batch, dispatching on the file extension. Rows
// whose cells are all empty are dropped; Lead.Index is the 0-based position
// among the rows that were kept.
func LoadLeads(path string) ([]model.Lead, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	}
	return nil, eris.Errorf("ingest: unsupported input format %q", filepath.Ext(path))
}

func loadCSV(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open input")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Errorf("ingest: %s has no header row", path)
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read header")
	}
	cols := resolveColumns(header)

	var leads []model.Lead
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read row")
		}

		lead, ok := buildLead(cols, row)
		if !ok {
			continue
		}
		lead.Index = len(leads)
		leads = append(leads, lead)
	}

	zap.L().Debug("ingest: loaded leads",
		zap.String("path", path),
		zap.Int("count", len(leads)),
	)
	return leads, nil
}

func loadXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("ingest: %s has no header row", path)
	}
	cols := resolveColumns(rowToStrings(sheet.Rows[0]))

	leads := make([]model.Lead, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		lead, ok := buildLead(cols, rowToStrings(row))
		if !ok {
			continue
		}
		lead.Index = len(leads)
		leads = append(leads, lead)
	}

	zap.L().Debug("ingest: loaded leads",
		zap.String("path", path),
		zap.Int("count", len(leads)),
	)
	return leads, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

// column is a resolved input column: either a canonical lead field or a
// metadata key carried through under its normalized header.
type column struct {
	key      string
	metadata bool
}

func resolveColumns(header []string) []column {
	cols := make([]column, len(header))
	for i, cell := range header {
		norm := normalizeHeader(cell)
		switch {
		case norm == "":
			cols[i] = column{key: fmt.Sprintf("column_%d", i+1), metadata: true}
		case canonicalFields[norm]:
			cols[i] = column{key: norm}
		default:
			if canonical, ok := headerSynonyms[norm]; ok {
				cols[i] = column{key: canonical}
			} else {
				cols[i] = column{key: norm, metadata: true}
			}
		}
	}
	return cols
}

func normalizeHeader(cell string) string {
	norm := strings.ToLower(strings.TrimSpace(cell))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}

// buildLead maps one data row onto a lead. The second return is false when
// every cell is empty.
func buildLead(cols []column, row []string) (model.Lead, bool) {
	var lead model.Lead
	empty := true

	for i, col := range cols {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		empty = false

		if col.metadata {
			if lead.Metadata == nil {
				lead.Metadata = make(map[string]string)
			}
			lead.Metadata[col.key] = value
			continue
		}
		switch col.key {
		case model.FieldSourceID:
			lead.SourceID = value
		case model.FieldFullName:
			lead.FullName = value
		case model.FieldFirstName:
			lead.FirstName = value
		case model.FieldLastName:
			lead.LastName = value
		case model.FieldCompany:
			lead.Company = value
		case model.FieldAddress:
			lead.Address = value
		case model.FieldCity:
			lead.City = value
		case model.FieldState:
			lead.State = value
		case model.FieldPhone:
			lead.Phone = value
		case model.FieldEmail:
			lead.Email = value
		}
	}
	return lead, !empty
}
