// Package services talks to remote HTTP endpoints on behalf of the CLI.
//
// # Dataset Fetcher
//
// [DatasetFetcher] downloads a movie dataset published over http(s) into a temporary file so that the importer
// can read it like a local CSV or ZIP archive. The file extension is taken from the URL path, falling back to the
// response Content-Type, because the importer decides between CSV and ZIP by extension.
//
// The caller owns the returned file and removes it when done.
package services
