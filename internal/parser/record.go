package parser

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/ternarybob/vitals/internal/models"
)

// TypeFilter is the set of record types retained by the parser. An empty
// filter retains every type.
type TypeFilter map[string]struct{}

// NewTypeFilter builds a filter from a list of allowed record types.
func NewTypeFilter(types []string) TypeFilter {
	filter := make(TypeFilter, len(types))
	for _, t := range types {
		filter[t] = struct{}{}
	}
	return filter
}

// Allows reports whether the filter retains the given record type.
func (f TypeFilter) Allows(recordType string) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[recordType]
	return ok
}

// UnitParser extracts at most one HealthRecord from one record unit.
// Safe for concurrent use: parsing holds no shared mutable state.
type UnitParser struct {
	filter  TypeFilter
	recency RecencyFilter
}

// NewUnitParser creates a parser with the given type and recency gates.
func NewUnitParser(filter TypeFilter, recency RecencyFilter) *UnitParser {
	return &UnitParser{
		filter:  filter,
		recency: recency,
	}
}

// Parse tokenizes a single record unit and returns the extracted record,
// or nil if the unit is filtered out or malformed. The unit is scanned as
// a shallow token stream; a fragment that fails to tokenize before its
// record element closes yields no record rather than failing the run.
func (p *UnitParser) Parse(unit string) *models.HealthRecord {
	dec := xml.NewDecoder(strings.NewReader(unit))

	var rec *models.HealthRecord

	for {
		tok, err := dec.Token()
		if err != nil {
			// Unterminated or malformed unit. Soft failure.
			return nil
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Record":
				rec = p.parseRecordElement(t)
				if rec == nil {
					return nil
				}
			case "MetadataEntry":
				if rec != nil {
					p.parseMetadataEntry(t, rec)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Record" {
				return rec
			}
		}
	}
}

// parseRecordElement applies both gates to the record's own attributes and
// returns the partially built record, or nil if a gate rejected it.
//
// Attribute order in the export is not contractually guaranteed, so the
// list is scanned twice: a cheap first pass locating only the type
// attribute, then a full pass only if the type filter accepted. An
// excluded type therefore never has its remaining attribute text
// inspected.
func (p *UnitParser) parseRecordElement(elem xml.StartElement) *models.HealthRecord {
	recordType := ""
	for _, attr := range elem.Attr {
		if attr.Name.Local == "type" {
			recordType = attr.Value
			break
		}
	}
	if recordType == "" {
		return nil
	}
	if !p.filter.Allows(recordType) {
		return nil
	}

	rec := &models.HealthRecord{
		Type:     recordType,
		Metadata: make(map[string]string),
	}

	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "startDate":
			if !p.recency.IsRecent(attr.Value) {
				return nil
			}
			rec.StartDate = attr.Value
		case "endDate":
			rec.EndDate = attr.Value
		case "value":
			rec.Value = attr.Value
		case "unit":
			rec.Unit = attr.Value
		}
	}

	return rec
}

// parseMetadataEntry reads one nested MetadataEntry element. Activity
// codes are translated to semantic names before storage; keys outside the
// allow-list are discarded.
func (p *UnitParser) parseMetadataEntry(elem xml.StartElement, rec *models.HealthRecord) {
	key, value := "", ""
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "key":
			key = attr.Value
		case "value":
			value = attr.Value
		}
	}
	if key == "" {
		return
	}

	if key == models.MetadataKeyActivityType {
		if code, err := strconv.Atoi(value); err == nil {
			value = ActivityName(code)
		}
	}

	switch key {
	case models.MetadataKeyActivityType, models.MetadataKeyPhysicalEffortType:
		rec.Metadata[key] = value
	}
}
