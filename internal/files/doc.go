// Package files contains the filesystem stages of the pipeline.
//
// Every stage is a thin adapter: naming, formatting and parsing rules live
// in package table, and this package only moves bytes through a core.FS.
// Each file is opened, fully read or written, and closed before the next
// one is touched.
package files
