package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/record"
)

func headers() []headcell.HeadCell {
	return []headcell.HeadCell{
		{Field: "name", Label: "Nom", Input: &headcell.InputProps{Type: headcell.Text}},
		{Field: "price", Label: "Prix", Currency: true, Input: &headcell.InputProps{Type: headcell.Number}},
		{Field: "batch", Label: "Lot", Input: &headcell.InputProps{Type: headcell.Number}},
	}
}

func TestWorkbook(t *testing.T) {
	rows := []record.Row{
		{"id": "a", "name": "Assiette", "price": 0.5, "batch": float64(6)},
		{"id": "b", "name": "Verre", "price": "1,25", "batch": ""},
	}

	f, err := Workbook("Matériel", headers(), rows)
	require.NoError(t, err)
	defer f.Close()

	head, err := f.GetCellValue("Matériel", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Nom", head)

	name, _ := f.GetCellValue("Matériel", "A3")
	assert.Equal(t, "Verre", name)

	price, _ := f.GetCellValue("Matériel", "B3", excelize.Options{RawCellValue: true})
	assert.Equal(t, "1.25", price)

	batch, _ := f.GetCellValue("Matériel", "C2", excelize.Options{RawCellValue: true})
	assert.Equal(t, "6", batch)

	empty, _ := f.GetCellValue("Matériel", "C3")
	assert.Empty(t, empty)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Clients", headers()[:1], []record.Row{{"id": "c", "name": "Dupont"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Clients", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", v)
}
