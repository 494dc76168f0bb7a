// Package state enumerates the entries of a state snapshot or runtime directory.
//
// Entries are visited in the store's native byte order, which groups them by
// category because every key starts with its big-endian category id. Keys are
// rendered through a keyformat.Registry; values are handed to a ValueDecoder
// untouched.
package state
