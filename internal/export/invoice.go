// Package export renders a computed invoice as an .xlsx workbook.
package export

import (
	"fmt"
	"time"

	"order_tracker/internal/models"
	"order_tracker/internal/pricing"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Invoice"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var rupiahFormat = `"Rp "#,##0`

// Exporter builds invoice workbooks in a fixed time zone.
type Exporter struct {
	loc *time.Location
}

func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{loc: loc}
}

// Filename is the download name for an invoice of projectCode.
func Filename(projectCode string, generatedAt time.Time) string {
	if projectCode == "" || projectCode == "-" {
		projectCode = "order"
	}
	return fmt.Sprintf("invoice-%s-%s.xlsx", projectCode, generatedAt.Format("20060102"))
}

// Export lays out the order header, the price breakdown and the revision fee
// in two columns: label and value. Money cells stay numeric.
func (e *Exporter) Export(order *models.OrderRecord, inv *pricing.Invoice, generatedAt time.Time) (*excelize.File, error) {
	if order == nil || inv == nil {
		return nil, fmt.Errorf("invoice export needs an order and an invoice")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name invoice sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &rupiahFormat})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &rupiahFormat,
		Border:       []excelize.Border{{Type: "top", Color: "#000000", Style: 1}},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	calc := inv.Calculation
	rev := inv.Revision
	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Rincian biaya", "", titleStyle},
		{"Judul", order.Title, 0},
		{"Code Projek", order.ProjectCode, 0},
		{"Tanggal Order", order.OrderDate, 0},
		{"Tanggal Selesai", order.FinishDate, 0},
		{"Paket", fmt.Sprintf("%s (ID %s)", orDash(inv.PackageName), inv.PackageID), 0},
		{"Durasi", pricing.FormatMinutes(inv.Duration), 0},
		{"Deadline", pricing.FormatDays(inv.Deadline), 0},
		{"Biaya Paket", calc.BaseFinal, moneyStyle},
		{fmt.Sprintf("Biaya 5+ (%d mnt x %s)", calc.OverMin, pricing.FormatIDR(calc.OverRate)), calc.OverCost, moneyStyle},
		{"Deadline Surcharge", calc.SurchargeVal, moneyStyle},
		{"Buffer Fee", calc.BufVal, moneyStyle},
		{"Subtotal (tanpa revisi)", inv.Subtotal, totalStyle},
		{"Revisi", fmt.Sprintf("%dx (gratis %gx, tambahan %gx)", rev.Used, rev.Included, rev.ExtraCount), 0},
		{fmt.Sprintf("Biaya Revisi Tambahan (%s%% x %gx)", pricing.FormatPercent(rev.Percent), rev.ExtraCount), rev.Fee, moneyStyle},
		{"Total", inv.Total, totalStyle},
		{"Dibuat", generatedAt.In(e.loc).Format("02/01/2006 15:04"), 0},
	}

	for i, row := range rows {
		if err := writeRow(f, i+1, row.label, row.value, row.style); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	// Column widths
	for col, width := range map[string]float64{"A": 42, "B": 28} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return f, nil
}

// writeRow puts label in column A and value in column B of row, styling both
// when style is set.
func writeRow(f *excelize.File, row int, label string, value interface{}, style int) error {
	labelCell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	valueCell, err := excelize.CoordinatesToCellName(2, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}

	if err := f.SetCellValue(SheetName, labelCell, label); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	if err := f.SetCellValue(SheetName, valueCell, value); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	if style == 0 {
		return nil
	}
	if err := f.SetCellStyle(SheetName, labelCell, valueCell, style); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
