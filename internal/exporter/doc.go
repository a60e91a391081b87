// Package exporter renders stored series and analytics reports as files.
//
// CSVWriter writes headers and rows to any io.Writer or file, optionally
// prefixed with a UTF-8 BOM so spreadsheet tools detect the encoding.
//
// FlowsCSV and PricesCSV turn flow records and price bars into rows, and
// DashboardWorkbook lays a DashboardReport out as an XLSX workbook with one
// sheet per report.
//
// Example usage:
//
//	w := exporter.NewCSVWriter()
//	err := w.WriteCSV(rw, exporter.FlowsCSV(records))
//
//	f, err := exporter.DashboardWorkbook(report, records, bars)
//	defer f.Close()
//	_, err = f.WriteTo(rw)
package exporter
