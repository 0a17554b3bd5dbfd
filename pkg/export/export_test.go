package export

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"id", "title", "speaker"},
		Rows: []map[string]string{
			{"id": "1", "title": "The Good Samaritan", "speaker": "Rev. Smith"},
			{"id": "2", "title": "The Prodigal Son", "speaker": "Rev. Smith"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	out := string(payload)
	assert.Contains(t, out, "id,title,speaker")
	assert.Contains(t, out, "1,The Good Samaritan,Rev. Smith")
	assert.Contains(t, out, "2,The Prodigal Son,Rev. Smith")
}

func TestCSVExporterQuotesCommas(t *testing.T) {
	data := Dataset{
		Headers: []string{"title"},
		Rows:    []map[string]string{{"title": "Grace, Mercy, Peace"}},
	}

	payload, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"Grace, Mercy, Peace"`)
}

func TestCSVExporterFlattensMultilineCells(t *testing.T) {
	data := Dataset{
		Headers: []string{"description"},
		Rows:    []map[string]string{{"description": "Potluck dinner\r\nBring a dish\nAll welcome"}},
	}

	payload, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Potluck dinner Bring a dish All welcome")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "Sermons")
	require.NoError(t, err)

	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestTruncateCellKeepsShortValues(t *testing.T) {
	assert.Equal(t, "The Good Samaritan", truncateCell("The Good Samaritan"))
}

func TestTruncateCellCountsRunes(t *testing.T) {
	long := strings.Repeat("é", 60)

	out := truncateCell(long)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 48, utf8.RuneCountInString(out))
	assert.Equal(t, strings.Repeat("é", 47)+"…", out)
}

func TestTruncateCellASCII(t *testing.T) {
	long := strings.Repeat("a", 60)

	out := truncateCell(long)
	assert.Equal(t, strings.Repeat("a", 47)+"…", out)
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Sermons")
	require.Error(t, err)
}
