// Package exporter writes cleaned measurement tables to CSV.
//
// CSVWriter writes a header and records, optionally prefixed with a UTF-8
// BOM for Excel. Every write goes to a temporary file in the destination
// directory and is renamed into place, so readers never see a partial file.
//
// VerifyCSV re-reads the first rows of a written file and infers a type per
// column, which the pipeline logs after saving.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(logger)
//	err := writer.WriteFrame("data/measurements_cleaned.csv", frame, exporter.FrameOptions{})
//
//	v, err := exporter.VerifyCSV("data/measurements_cleaned.csv", 5)
package exporter
