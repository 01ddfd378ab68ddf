// Package models defines the persisted entities of the movie recommendation site.
//
// There are two, unrelated in the schema:
//
//   - [User] : site accounts with a unique username and email, a bcrypt credential
//     and the set of users they follow (no reciprocity)
//   - [Movie] : one row of the IMDB 5000 movie dataset
//
// Column constraints live in the SQL migrations and are mirrored as validator tags, because
// SQLite does not enforce VARCHAR lengths. [Model.Validate] checks them before a write.
// The [Repository] interface lists the operations every repository supports.
package models
