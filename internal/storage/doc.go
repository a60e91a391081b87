// Package storage persists reconstructed flow records, price bars and saved
// analyses per user.
//
// Two Repository implementations are provided:
//
//   - MemoryRepository keeps everything in process memory. It is the default
//     driver and the one used by tests and the flowreport CLI.
//   - PostgresRepository stores data in PostgreSQL through GORM. Tables are
//     migrated on startup and uploads are upserted so that re-uploading a
//     report replaces the previous values for the same day.
//
// Flow records are unique per (user, date, category) and price bars per
// (user, date). Reads always return ascending date order, with categories in
// lexicographic order within a day.
package storage
