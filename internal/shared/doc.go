// Package shared provides helpers used across the flowpulse codebase that do not
// belong to any domain package.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- Builders for B3 flow reports and WINFUT quote files in their raw CSV form
//	- Builders for daily flow and price series
//	- A capturing slog handler to assert on structured logs
//
// Example usage:
//
//	func TestUpload(t *testing.T) {
//	    content := testutil.FlowReportCSV(testutil.Day(2024, 3, 1),
//	        testutil.FlowRow{Category: "Estrangeiro", Buys: 1000, Sells: 800})
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
