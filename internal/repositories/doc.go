// Package repositories implements SQL persistence for users, follows and movies.
//
// Queries are written once with "?" placeholders and rebound for the configured driver
// (SQLite or postgres through pgx). Randomized selection used by the demo network generator is
// delegated to the database with ORDER BY random(), which both dialects support.
//
// Key Implementations:
//   - [UserRepository] : accounts, the follows relationship and random user selection
//   - [MovieRepository] : dataset rows, including the transactional full replace used by imports
//
// Unique constraint violations surface as [shared.ErrDuplicate]; missing rows as [shared.ErrNotFound].
package repositories
