// Package testutil builds on-disk fixtures for tests: journal segments, Pebble
// state directories and golden files.
//
// Fixtures are written with the same codecs the readers use, so a round trip
// through a builder and a reader exercises the real decoding path.
package testutil
