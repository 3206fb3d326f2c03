package models

import (
	"encoding/json"
	"fmt"
)

// AttributeMapping associates each model attribute with a layer field, or
// leaves it unmapped. Attribute order follows the model.
//
// Mappings produced by the auto-mapper never use a field twice. Manual edits
// through Set are allowed to; Duplicates reports them.
type AttributeMapping struct {
	attributes []string
	fields     map[string]string
}

// MappingEntry is the wire form of one attribute's association.
// Field is nil when the attribute is unmapped.
type MappingEntry struct {
	Attribute string  `json:"attribute"`
	Field     *string `json:"field"`
}

// NewAttributeMapping creates a mapping with every attribute unmapped.
func NewAttributeMapping(attributes []string) *AttributeMapping {
	m := &AttributeMapping{
		attributes: make([]string, 0, len(attributes)),
		fields:     make(map[string]string, len(attributes)),
	}
	for _, attr := range attributes {
		m.track(attr)
	}
	return m
}

func (m *AttributeMapping) track(attr string) {
	if m.fields == nil {
		m.fields = make(map[string]string)
	}
	for _, existing := range m.attributes {
		if existing == attr {
			return
		}
	}
	m.attributes = append(m.attributes, attr)
}

// Attributes returns the attribute names in model order.
func (m *AttributeMapping) Attributes() []string {
	out := make([]string, len(m.attributes))
	copy(out, m.attributes)
	return out
}

// Field returns the field mapped to attr and whether one is set.
func (m *AttributeMapping) Field(attr string) (string, bool) {
	field, ok := m.fields[attr]
	return field, ok
}

// Set maps attr to field, replacing any previous choice.
func (m *AttributeMapping) Set(attr, field string) {
	m.track(attr)
	m.fields[attr] = field
}

// Unset marks attr as unmapped.
func (m *AttributeMapping) Unset(attr string) {
	m.track(attr)
	delete(m.fields, attr)
}

// MappedCount returns how many attributes have a field.
func (m *AttributeMapping) MappedCount() int {
	return len(m.fields)
}

// Duplicates returns fields chosen for more than one attribute, each with the
// attributes that chose it in model order.
func (m *AttributeMapping) Duplicates() map[string][]string {
	byField := make(map[string][]string)
	for _, attr := range m.attributes {
		if field, ok := m.fields[attr]; ok {
			byField[field] = append(byField[field], attr)
		}
	}

	dups := make(map[string][]string)
	for field, attrs := range byField {
		if len(attrs) > 1 {
			dups[field] = attrs
		}
	}
	return dups
}

// MappingSummary reports how complete a mapping is.
type MappingSummary struct {
	Total      int                 `json:"total"`
	Mapped     int                 `json:"mapped"`
	Unmapped   []string            `json:"unmapped"`
	Duplicates map[string][]string `json:"duplicates"`
}

// Summary counts mapped attributes and lists the unmapped ones in model order.
func (m *AttributeMapping) Summary() MappingSummary {
	unmapped := []string{}
	for _, attr := range m.attributes {
		if _, ok := m.fields[attr]; !ok {
			unmapped = append(unmapped, attr)
		}
	}
	return MappingSummary{
		Total:      len(m.attributes),
		Mapped:     len(m.fields),
		Unmapped:   unmapped,
		Duplicates: m.Duplicates(),
	}
}

// Apply projects one input feature's attribute values onto the model.
// Unmapped attributes, and mapped fields missing from the record, become nil.
func (m *AttributeMapping) Apply(record map[string]any) map[string]any {
	out := make(map[string]any, len(m.attributes))
	for _, attr := range m.attributes {
		field, ok := m.fields[attr]
		if !ok {
			out[attr] = nil
			continue
		}
		out[attr] = record[field]
	}
	return out
}

// Entries returns the mapping as an ordered list.
func (m *AttributeMapping) Entries() []MappingEntry {
	entries := make([]MappingEntry, 0, len(m.attributes))
	for _, attr := range m.attributes {
		entry := MappingEntry{Attribute: attr}
		if field, ok := m.fields[attr]; ok {
			f := field
			entry.Field = &f
		}
		entries = append(entries, entry)
	}
	return entries
}

// MarshalJSON encodes the mapping as an ordered list of entries.
func (m *AttributeMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// UnmarshalJSON decodes the ordered entry list produced by MarshalJSON.
func (m *AttributeMapping) UnmarshalJSON(data []byte) error {
	var entries []MappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode attribute mapping: %w", err)
	}

	m.attributes = nil
	m.fields = make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.Field == nil {
			m.Unset(entry.Attribute)
			continue
		}
		m.Set(entry.Attribute, *entry.Field)
	}
	return nil
}
