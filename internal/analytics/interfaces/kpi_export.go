package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"maintenance-kpi/internal/analytics/application"
)

const defaultReportTitle = "Maintenance KPI Report"

func reportTitle(title string) string {
	if title == "" {
		return defaultReportTitle
	}
	return title
}

func mtbfText(d *application.Dashboard) string {
	if d.MTBF == nil {
		return "no data"
	}
	return fmt.Sprintf("%d days (%d intervals)", d.MTBF.AverageDays, d.MTBF.IntervalCount)
}

func durationText(d *application.Dashboard) string {
	if d.MaintenanceDuration == nil {
		return "no data"
	}
	return fmt.Sprintf("%d days (%d samples)", d.MaintenanceDuration.AverageDays, d.MaintenanceDuration.SampleCount)
}

// BuildKPIReportPDF renders the dashboard as a one-page PDF.
func BuildKPIReportPDF(title string, d *application.Dashboard) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("kpi export: nil dashboard")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, reportTitle(title))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", d.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Stock compliance: %d%% (%d of %d parts)", d.StockCompliance.Percentage, d.StockCompliance.CompliantCount, d.StockCompliance.TotalCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Order cancellations: %d%% (%d of %d orders)", d.CancellationRatio.Percentage, d.CancellationRatio.CancelledCount, d.CancellationRatio.TotalCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("MTBF: %s", mtbfText(d)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Mean maintenance duration: %s", durationText(d)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Inventory turnover trend: %.1f%%", d.Turnover.Trend))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	for _, header := range []string{"Period", "Turnover", "Preventive", "Reactive", "Delivered", "Pending"} {
		pdf.CellFormat(30, 6, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i, point := range d.Turnover.Series {
		preventive, reactive := 0, 0
		if i < len(d.MaintenanceMix) {
			preventive = d.MaintenanceMix[i].PreventiveCount
			reactive = d.MaintenanceMix[i].ReactiveCount
		}
		delivered, pending := "0.00", "0.00"
		if i < len(d.OrderFinancials) {
			delivered = d.OrderFinancials[i].Delivered.StringFixed(2)
			pending = d.OrderFinancials[i].Pending.StringFixed(2)
		}
		pdf.CellFormat(30, 6, point.Period, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", point.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", preventive), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", reactive), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, delivered, "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, pending, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildKPIReportXLSX renders the dashboard as a workbook with a summary
// sheet and one sheet per series.
func BuildKPIReportXLSX(title string, d *application.Dashboard) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("kpi export: nil dashboard")
	}
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	turnoverSheet := "turnover"
	mixSheet := "maintenance_mix"
	financialSheet := "order_financials"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, sheet := range []string{turnoverSheet, mixSheet, financialSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", reportTitle(title))
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", d.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Stock compliance (%)")
	_ = f.SetCellValue(summarySheet, "B4", d.StockCompliance.Percentage)
	_ = f.SetCellValue(summarySheet, "A5", "Order cancellations (%)")
	_ = f.SetCellValue(summarySheet, "B5", d.CancellationRatio.Percentage)
	_ = f.SetCellValue(summarySheet, "A6", "MTBF")
	_ = f.SetCellValue(summarySheet, "B6", mtbfText(d))
	_ = f.SetCellValue(summarySheet, "A7", "Mean maintenance duration")
	_ = f.SetCellValue(summarySheet, "B7", durationText(d))
	_ = f.SetCellValue(summarySheet, "A8", "Average inventory")
	_ = f.SetCellValue(summarySheet, "B8", d.Turnover.AverageInventory)
	_ = f.SetCellValue(summarySheet, "A9", "Turnover trend (%)")
	_ = f.SetCellValue(summarySheet, "B9", d.Turnover.Trend)

	_ = f.SetCellValue(turnoverSheet, "A1", "Period")
	_ = f.SetCellValue(turnoverSheet, "B1", "Parts consumed")
	_ = f.SetCellValue(turnoverSheet, "C1", "Rate")
	for i, point := range d.Turnover.Series {
		row := i + 2
		_ = f.SetCellValue(turnoverSheet, fmt.Sprintf("A%d", row), point.Period)
		_ = f.SetCellValue(turnoverSheet, fmt.Sprintf("B%d", row), point.PartsConsumed)
		_ = f.SetCellValue(turnoverSheet, fmt.Sprintf("C%d", row), point.Rate)
	}

	_ = f.SetCellValue(mixSheet, "A1", "Period")
	_ = f.SetCellValue(mixSheet, "B1", "Preventive")
	_ = f.SetCellValue(mixSheet, "C1", "Reactive")
	_ = f.SetCellValue(mixSheet, "D1", "Preventive (%)")
	for i, point := range d.MaintenanceMix {
		row := i + 2
		_ = f.SetCellValue(mixSheet, fmt.Sprintf("A%d", row), point.Period)
		_ = f.SetCellValue(mixSheet, fmt.Sprintf("B%d", row), point.PreventiveCount)
		_ = f.SetCellValue(mixSheet, fmt.Sprintf("C%d", row), point.ReactiveCount)
		_ = f.SetCellValue(mixSheet, fmt.Sprintf("D%d", row), point.PreventivePercentage)
	}

	_ = f.SetCellValue(financialSheet, "A1", "Period")
	_ = f.SetCellValue(financialSheet, "B1", "Delivered")
	_ = f.SetCellValue(financialSheet, "C1", "Pending")
	for i, point := range d.OrderFinancials {
		row := i + 2
		_ = f.SetCellValue(financialSheet, fmt.Sprintf("A%d", row), point.Period)
		_ = f.SetCellValue(financialSheet, fmt.Sprintf("B%d", row), point.Delivered.InexactFloat64())
		_ = f.SetCellValue(financialSheet, fmt.Sprintf("C%d", row), point.Pending.InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
