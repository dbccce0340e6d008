package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(rows int) Dataset {
	data := Dataset{Title: "Time slots", Headers: []string{"date", "start", "status"}}
	for i := 0; i < rows; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"date":   "2026-10-19",
			"start":  fmt.Sprintf("%02d:00", 9+i%8),
			"status": "Available",
		})
	}
	return data
}

func TestCSVRendersHeadersInOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(2))
	require.NoError(t, err)
	assert.Equal(t, "date,start,status\n2026-10-19,09:00,Available\n2026-10-19,10:00,Available\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFSpansPages(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(120))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
