// Package domain models groundwater monitoring stations (DWLR, Digital Water
// Level Recorder) and the analytics computed over their daily series.
//
// # Data Conventions
//
// Levels:
//
//	Depth to water in meters below ground level. Larger values are deeper.
//	Generated series are clamped to a minimum of 1 m.
//
// Dates:
//
//	ISO calendar dates "YYYY-MM-DD", one record per day, oldest first.
//	Imported documents are normalized by [NormalizeSeries]: unparsable dates
//	are dropped, duplicates collapse to the last record, order is restored.
//
// Status classification (from the current level only, never recomputed):
//
//	> 40 m critical | > 30 m semi-critical | otherwise safe
//
// # Analytics
//
// Recharge events ([DetectRechargeEvents]):
//
//	A day with more than 10 mm of rain followed, within three days, by a
//	level more than 0.3 m above that day's level. Efficiency is the rise as
//	a percentage of rainfall over the trigger day and the next two days.
//	Response time is bucketed by the first day the level gained 0.2 m.
//
// Statistics ([ComputeStatistics]):
//
//	Mean, min, max, population standard deviation, and the least-squares
//	slope against sample index scaled by 365 (meters per year).
//
// Correlation ([CorrelationMatrix]):
//
//	Pearson coefficients for 2 to 6 series, each pair truncated to its
//	common length. Zero-variance series correlate as 0.
//
// Seasonal aggregation ([SeasonalAggregator]):
//
//	Pre-Monsoon Mar-May, Monsoon Jun-Sep, Post-Monsoon Oct-Nov, Winter Dec-Feb.
//	"synthetic" mode derives figures from a hash of the station id with a
//	0.3 m penalty per year before 2024; "calendar" mode buckets the real
//	series by month. The effectiveness score is
//	min(100, round((recharge*10 + retention) / 2)).
//
// All analytics are pure: the same input always yields the same output.
package domain
