// Package storage persists scraped events as a pretty-printed JSON array.
//
// The file is written as UTF-8 with non-ASCII text and HTML characters left
// unescaped, so it reads the same as the calendar it came from.
package storage
