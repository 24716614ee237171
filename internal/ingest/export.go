package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadverify/internal/model"
)

// identityColumns lead every output row: the input identity of the lead,
// before any discovered fields.
var identityColumns = []string{
	"index",
	"source_id",
	"full_name",
	"first_name",
	"last_name",
	"company",
	"city",
	"state",
	"input_phone",
	"input_email",
}

// WriteReport writes one row per consolidated record, dispatching on the
// file extension (.csv, .xlsx, or .json).
func WriteReport(path string, report *model.RunReport) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, report)
	case ".xlsx":
		return writeXLSX(path, report)
	case ".json":
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "ingest: create output")
		}
		defer f.Close()
		return WriteReportJSON(f, report)
	}
	return eris.Errorf("ingest: unsupported output format %q", filepath.Ext(path))
}

// WriteReportJSON dumps the full report as indented JSON.
func WriteReportJSON(w io.Writer, report *model.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return eris.Wrap(err, "ingest: encode report")
	}
	return nil
}

func writeCSV(path string, report *model.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "ingest: create output")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	fields := fieldColumns(report)
	if err := w.Write(reportHeader(fields)); err != nil {
		return eris.Wrap(err, "ingest: write header")
	}
	for _, rec := range report.Records {
		if err := w.Write(recordRow(rec, fields)); err != nil {
			return eris.Wrap(err, "ingest: write row")
		}
	}
	return nil
}

func writeXLSX(path string, report *model.RunReport) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("results")
	if err != nil {
		return eris.Wrap(err, "ingest: add sheet")
	}

	fields := fieldColumns(report)
	writeSheetRow(sheet, reportHeader(fields))
	for _, rec := range report.Records {
		writeSheetRow(sheet, recordRow(rec, fields))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "ingest: save workbook")
	}
	return nil
}

func writeSheetRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// fieldColumns returns every field key discovered anywhere in the run,
// sorted so the column layout is deterministic.
func fieldColumns(report *model.RunReport) []string {
	keys := make(map[string]struct{})
	for _, rec := range report.Records {
		for key := range rec.Fields {
			keys[key] = struct{}{}
		}
	}

	out := make([]string, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func reportHeader(fields []string) []string {
	header := make([]string, 0, len(identityColumns)+len(fields)+2)
	header = append(header, identityColumns...)
	header = append(header, fields...)
	return append(header, "errors", "metadata")
}

func recordRow(rec model.ConsolidatedRecord, fields []string) []string {
	row := make([]string, 0, len(identityColumns)+len(fields)+2)
	row = append(row,
		strconv.Itoa(rec.Lead.Index),
		rec.Lead.SourceID,
		rec.Lead.FullName,
		rec.Lead.FirstName,
		rec.Lead.LastName,
		rec.Lead.Company,
		rec.Lead.City,
		rec.Lead.State,
		rec.Lead.Phone,
		rec.Lead.Email,
	)
	for _, key := range fields {
		row = append(row, renderField(rec, key))
	}
	return append(row, renderErrors(rec.Errors), renderMetadata(rec.Lead.Metadata))
}

// renderField shows a discovered value with its source, "jane@x.com (echo)".
func renderField(rec model.ConsolidatedRecord, key string) string {
	fv, ok := rec.Fields[key]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (%s)", fv.Value, fv.Source)
}

func renderErrors(errs []model.SourceError) string {
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Message)
	}
	return strings.Join(parts, "; ")
}

func renderMetadata(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(data)
}
