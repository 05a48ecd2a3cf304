// Package jsonfile provides the default durable cache: a pretty-printed JSON
// object mapping document keys to their extracted text.
//
// Snapshots are written atomically through a temporary file and a rename.
// Between snapshots every new entry is appended to a JSON-lines journal at
// <path>.journal, which is replayed over the snapshot on load and removed
// by the next snapshot. An undecodable snapshot is moved to <path>.corrupt
// and the journal is still replayed.
package jsonfile
