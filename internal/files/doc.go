// Package files finds and reads report files on disk for the offline
// FlowPulse tooling.
//
// Discovery resolves relative directories against a base path and lists
// report files in name order, which for the dated B3 exports is also
// chronological order. ReadReports turns the discovered files into upload
// payloads with the same text decoding the HTTP upload path applies.
//
//	discovery := files.NewDiscovery(".")
//	found, err := discovery.FindReports("data/participacao")
//	uploads, err := files.ReadReports(found, files.DefaultMaxFileSize)
package files
