package models

import (
	"regexp"
	"sort"
)

// ClassCatalog maps a model class name to its ordered attribute names.
// Both the SQL and the database extractors produce this shape.
type ClassCatalog map[string][]string

// FieldSet is the ordered field list of one input layer.
type FieldSet []string

// classSuffixPattern matches a table name ending in "_<letter>". Geometry-type
// variants of one class (roads_p, roads_l, roads_a) share the base name.
var classSuffixPattern = regexp.MustCompile(`^(.*)_[a-zA-Z]$`)

// FoldClassName returns the class name for a physical table name by stripping
// a single trailing "_<letter>" suffix. Underscores elsewhere are kept.
func FoldClassName(tableName string) string {
	if m := classSuffixPattern.FindStringSubmatch(tableName); m != nil {
		return m[1]
	}
	return tableName
}

// Names returns the class names in sorted order, as the class picker lists them.
func (c ClassCatalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attributes returns the attribute list of a class and whether the class exists.
func (c ClassCatalog) Attributes(class string) ([]string, bool) {
	attrs, ok := c[class]
	return attrs, ok
}
