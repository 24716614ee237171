package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadverify/internal/model"
)

func writeLeadCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadLeads_CSV(t *testing.T) {
	path := writeLeadCSV(t, `Lead ID,Name,First Name,Last,Organization,Email Address,Phone-Number,City,State,Zip,Score
L001,Jane Doe,Jane,Doe,Acme Corp,jane@acme.com,(512) 555-0100,Austin,TX,78701,0.92
,,,,,,,,,,
L002,,John,Smith,,,,"Portland",OR,97201,
`)

	leads, err := LoadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	first := leads[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "L001", first.SourceID)
	assert.Equal(t, "Jane Doe", first.FullName)
	assert.Equal(t, "Jane", first.FirstName)
	assert.Equal(t, "Doe", first.LastName)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "jane@acme.com", first.Email)
	assert.Equal(t, "(512) 555-0100", first.Phone)
	assert.Equal(t, "Austin", first.City)
	assert.Equal(t, "TX", first.State)
	assert.Equal(t, map[string]string{"zip": "78701", "score": "0.92"}, first.Metadata)

	second := leads[1]
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "L002", second.SourceID)
	assert.Empty(t, second.FullName)
	assert.Equal(t, "John Smith", second.Name())
	assert.Equal(t, "Portland, OR 97201", second.Location())
}

func TestLoadLeads_CSVRaggedRows(t *testing.T) {
	path := writeLeadCSV(t, `name,email,phone
Jane Doe,jane@acme.com
John Smith,john@acme.com,(503) 555-0100,extra
`)

	leads, err := LoadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Empty(t, leads[0].Phone)
	assert.Equal(t, "(503) 555-0100", leads[1].Phone)
}

func TestLoadLeads_CSVWhitespaceOnlyRowSkipped(t *testing.T) {
	path := writeLeadCSV(t, "name,email\n  ,  \nJane Doe,jane@acme.com\n")

	leads, err := LoadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, 0, leads[0].Index)
	assert.Equal(t, "Jane Doe", leads[0].FullName)
}

func TestLoadLeads_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("leads")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"record_id", "name", "primary_email", "notes"},
		{"L001", "Jane Doe", "jane@acme.com", "called twice"},
		{"", "", "", ""},
		{"L002", "John Smith", "", ""},
	} {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	require.NoError(t, f.Save(path))

	leads, err := LoadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "L001", leads[0].SourceID)
	assert.Equal(t, "jane@acme.com", leads[0].Email)
	assert.Equal(t, map[string]string{"notes": "called twice"}, leads[0].Metadata)
	assert.Equal(t, "L002", leads[1].SourceID)
	assert.Equal(t, 1, leads[1].Index)
}

func TestLoadLeads_UnknownExtension(t *testing.T) {
	_, err := LoadLeads(filepath.Join(t.TempDir(), "leads.txt"))
	assert.ErrorContains(t, err, "unsupported input format")
}

func TestLoadLeads_MissingFile(t *testing.T) {
	_, err := LoadLeads(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoadLeads_EmptyCSV(t *testing.T) {
	path := writeLeadCSV(t, "")

	_, err := LoadLeads(path)
	assert.ErrorContains(t, err, "no header row")
}

func TestResolveColumns(t *testing.T) {
	cols := resolveColumns([]string{"Email Address", "full_name", "Deal-Stage", "", "state"})

	assert.Equal(t, []column{
		{key: model.FieldEmail},
		{key: model.FieldFullName},
		{key: "deal_stage", metadata: true},
		{key: "column_4", metadata: true},
		{key: model.FieldState},
	}, cols)
}
