package export

import (
	"bytes"
	"testing"
	"time"

	"order_tracker/internal/models"
	"order_tracker/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportInvoice(t *testing.T) {
	order := &models.OrderRecord{Title: "Video A", ProjectCode: "PRJ1", OrderDate: "01/01/2024", FinishDate: "05/01/2024", Revision: 3}
	inv := &pricing.Invoice{
		PackageID:   "2",
		PackageName: "Standard",
		Duration:    8,
		Deadline:    2,
		Calculation: pricing.Calculation{BaseFinal: 150000, OverMin: 3, OverRate: 10000, OverCost: 30000, SurchargeVal: 45000, BufVal: 15000},
		Subtotal:    240000,
		Revision:    pricing.RevisionFee{Used: 3, Included: 2, ExtraCount: 1, Percent: 12.5, Fee: 30000},
		Total:       270000,
	}
	generated := time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC)

	f, err := NewExporter(time.FixedZone("WIB", 7*3600)).Export(order, inv, generated)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)

	values := map[string]string{}
	for _, row := range rows {
		if len(row) == 2 {
			values[row[0]] = row[1]
		}
	}
	assert.Equal(t, "Video A", values["Judul"])
	assert.Equal(t, "Standard (ID 2)", values["Paket"])
	assert.Equal(t, "8 menit", values["Durasi"])
	assert.Equal(t, "150000", values["Biaya Paket"])
	assert.Equal(t, "30000", values["Biaya 5+ (3 mnt x Rp 10.000)"])
	assert.Equal(t, "240000", values["Subtotal (tanpa revisi)"])
	assert.Equal(t, "3x (gratis 2x, tambahan 1x)", values["Revisi"])
	assert.Equal(t, "30000", values["Biaya Revisi Tambahan (12.5% x 1x)"])
	assert.Equal(t, "270000", values["Total"])
	assert.Equal(t, "05/01/2024 10:00", values["Dibuat"])

	width, err := wb.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, 42.0, width)

	style, err := wb.GetCellStyle(SheetName, "B1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestWriteRowReportsBadCoordinates(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", SheetName))

	assert.Error(t, writeRow(f, 0, "Judul", "x", 0))
	assert.Error(t, writeRow(f, 1, "Judul", "x", 999))
	require.NoError(t, writeRow(f, 1, "Judul", "x", 0))
}

func TestExportNeedsInvoice(t *testing.T) {
	_, err := NewExporter(nil).Export(&models.OrderRecord{}, nil, time.Now())
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "invoice-PRJ1-20240105.xlsx", Filename("PRJ1", at))
	assert.Equal(t, "invoice-order-20240105.xlsx", Filename("-", at))
}
