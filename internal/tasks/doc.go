// Package tasks implements the long-running maintenance jobs behind the CLI with real-time progress reporting.
//
// # Core Operations
//
//  1. [DatasetImporter.Import] : Replace the movies table with an IMDB 5000 dataset
//     - Accepts a CSV file, a ZIP archive holding one, or an http(s) URL fetched first
//     - Maps columns by header name and aborts on a missing column or malformed number
//     - Deletes and bulk-inserts in one transaction
//
//  2. [NetworkGenerator.Generate] : Build the demo social graph
//     - Drops every user, then creates the seed accounts user1..userN and fake accounts
//     - Repeatedly picks a user without follows and wires it to a random set of other users
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends never block: when the channel is full the
// update is dropped.
package tasks
