// Package dataprocessing holds the in-memory table model and the cleaning
// operations applied to air-quality measurement exports.
//
// # Architecture
//
// The package is organized into four parts:
//
//  1. Frame: an ordered table of typed cells whose operations return derived copies
//  2. Parser: reads CSV and Excel inputs into a string-typed Frame
//  3. Processor: missing-value handling (median imputation, key drop)
//  4. Analytics: column statistics and the end-of-run summary
//
// # Usage
//
//	frame, err := dataprocessing.ParseFile("measurements.csv", dataprocessing.ReadOptions{})
//	if err != nil {
//	    return err
//	}
//	frame, failed, err := frame.CoerceNumeric("value")
//	frame, failed, err = frame.ParseTimestamps("datetimeUtc", dataprocessing.ParseTimestamp)
//	frame, stats, err := dataprocessing.NewMissingValueProcessor(opts).Process(frame)
//
// # Missing values
//
// The tokens listed by IsMissingToken (empty, NA, NaN, null and similar)
// are read as missing. Numeric and timestamp conversion turn unparseable
// entries into missing cells instead of failing.
package dataprocessing
