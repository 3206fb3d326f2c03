package matching

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

var defaultSynonyms = mustParseSynonyms(defaultSynonymsYAML)

// SynonymTable maps a canonical attribute name to alternate names that count
// as equivalent regardless of string similarity. It is read-only once built.
type SynonymTable struct {
	entries    map[string][]string
	inflection bool
}

// NewSynonymTable builds a table from canonical name -> alternates.
// Keys are folded to lower case; entries whose keys collide are concatenated.
func NewSynonymTable(entries map[string][]string) *SynonymTable {
	t := &SynonymTable{entries: make(map[string][]string, len(entries))}
	for key, alts := range entries {
		k := strings.ToLower(key)
		t.entries[k] = append(t.entries[k], alts...)
	}
	return t
}

// DefaultSynonyms returns the built-in table shipped with the module.
func DefaultSynonyms() *SynonymTable {
	return defaultSynonyms
}

// ParseSynonyms reads a YAML document of the form "name: [alt1, alt2]".
func ParseSynonyms(data []byte) (*SynonymTable, error) {
	var entries map[string][]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}
	return NewSynonymTable(entries), nil
}

// LoadSynonyms reads a synonym table from a YAML file.
func LoadSynonyms(path string) (*SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}
	return ParseSynonyms(data)
}

func mustParseSynonyms(data []byte) *SynonymTable {
	t, err := ParseSynonyms(data)
	if err != nil {
		panic(err)
	}
	return t
}

// WithInflections returns a copy of the table that also offers the singular
// and plural forms of the looked-up name.
func (t *SynonymTable) WithInflections() *SynonymTable {
	return &SynonymTable{entries: t.entries, inflection: true}
}

// Len returns the number of canonical names in the table.
func (t *SynonymTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// SynonymsOf returns the alternates registered for attr, looked up
// case-insensitively on the raw name. A nil table has no entries.
func (t *SynonymTable) SynonymsOf(attr string) []string {
	if t == nil {
		return nil
	}

	key := strings.ToLower(attr)
	out := append([]string(nil), t.entries[key]...)

	if t.inflection {
		for _, form := range []string{inflection.Singular(key), inflection.Plural(key)} {
			if form != key && !contains(out, form) {
				out = append(out, form)
			}
		}
	}

	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
