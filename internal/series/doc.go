// Package series holds the small building blocks shared by every flow analysis:
// grouping records by investor category, joining two date-indexed series by
// calendar day, classifying trailing windows and the basic statistics
// (mean, median, population standard deviation, Pearson correlation).
//
// Every function is pure. Grouping always yields categories in sorted order and
// records in ascending date order, so downstream analyses never depend on map
// iteration or upload order.
package series
