package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldClassName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"roads_a", "roads"},
		{"roads_L", "roads"},
		{"roads", "roads"},
		{"via_deslocamento_l", "via_deslocamento"},
		{"via_deslocamento", "via_deslocamento"},
		{"roads_ab", "roads_ab"},
		{"roads_1", "roads_1"},
		{"a_b_c", "a_b"},
		{"x", "x"},
		{"_a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldClassName(tt.table))
		})
	}
}

func TestClassCatalog_Names(t *testing.T) {
	catalog := ClassCatalog{
		"rivers":    {"id"},
		"buildings": {"id", "name"},
		"roads":     {},
	}

	assert.Equal(t, []string{"buildings", "rivers", "roads"}, catalog.Names())
	assert.Empty(t, ClassCatalog{}.Names())
}

func TestClassCatalog_Attributes(t *testing.T) {
	catalog := ClassCatalog{"roads": {"id", "name"}}

	attrs, ok := catalog.Attributes("roads")
	assert.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, attrs)

	_, ok = catalog.Attributes("rivers")
	assert.False(t, ok)
}
