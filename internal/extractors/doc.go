// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor knows how to pull
// plain text out of one file format while preserving reading order.
//
// Extractors are registered with the Registry at startup; RegisterDefaults
// wires up the built-in set (pdf, docx, xlsx, csv).
package extractors
