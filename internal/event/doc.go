// Package event provides the event record scraped from the SRRC calendar and
// the deduplication applied before reporting.
//
// Fields read from the visible listing markup are always present (empty when
// the markup lacks them). Fields taken from the embedded schema.org JSON-LD block
// are pointers and are omitted from JSON when no usable block was found, so a
// consumer treats a missing key and an empty string the same way.
package event
