package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:    "Attendance Math101",
		Subtitle: "2024-06-01 to 2024-06-07",
		Headers:  []string{"Date", "Student", "Present"},
		Rows: []map[string]string{
			{"Date": "2024-06-03", "Student": "Ria", "Present": "yes"},
			{"Date": "2024-06-03", "Student": "Kiran, Jr.", "Present": "no"},
			{"Date": "2024-06-05", "Student": "Meera"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Date,Student,Present\n2024-06-03,Ria,yes\n2024-06-03,\"Kiran, Jr.\",no\n2024-06-05,Meera,\n", string(out))

	semi, err := (&CSVExporter{Comma: ';'}).Render(sampleDataset())
	require.NoError(t, err)
	assert.Contains(t, string(semi), "Date;Student;Present")

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{Title: "empty"})
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	f, ok := ParseFormat(" PDF ")
	require.True(t, ok)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, "report.pdf", f.Filename("report"))

	f, ok = ParseFormat("csv")
	require.True(t, ok)
	assert.Equal(t, "text/csv", f.ContentType())

	_, ok = ParseFormat("xlsx")
	assert.False(t, ok)
}
