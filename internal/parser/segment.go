// Package parser splits the export document into record units and
// extracts structured health records from them.
package parser

import "strings"

// RecordMarker is the literal opening of a record element. The export
// schema never embeds this sequence inside an attribute value, so textual
// splitting on it yields self-contained fragments without a tree parse.
const RecordMarker = "<Record "

// Segment splits the raw document into record units. Each unit is a slice
// of doc beginning at a marker occurrence and running to the next one (or
// to the end of the document), so no text is copied. The document prologue
// before the first marker carries no records and is discarded.
func Segment(doc string) []string {
	start := strings.Index(doc, RecordMarker)
	if start < 0 {
		return nil
	}

	var units []string
	for {
		rest := doc[start+len(RecordMarker):]
		next := strings.Index(rest, RecordMarker)
		if next < 0 {
			units = append(units, doc[start:])
			return units
		}
		end := start + len(RecordMarker) + next
		units = append(units, doc[start:end])
		start = end
	}
}
