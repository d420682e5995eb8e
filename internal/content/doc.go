// Package content picks the scripture verse read aloud when an alarm fires.
//
// Two providers exist: a curated Catalog compiled into the binary, grouped by
// category and also used for sequential reading, and an optional SQLite
// Bible for whole-bible, testament, book and chapter selection. The Resolver
// combines them so that some verse is always produced.
package content
