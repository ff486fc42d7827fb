// Package repositories implements SQLite persistence on top of a single
// string-keyed table.
//
// Key Implementations:
//   - [KVRepository] : the notes persistence host (content, title, icon, width)
//   - [TokenStore] : Spotify OAuth tokens kept under fixed keys in the same table
//
// Reads never fail loudly for the notes editor: a missing key and a broken
// database both mean "use the default", and the error is logged.
package repositories
