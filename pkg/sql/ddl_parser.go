package sql

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ekaya-inc/synmap/pkg/models"
)

var (
	// createTablePattern captures the optionally schema-qualified table name,
	// the bare table name and the column block of a CREATE TABLE statement
	// terminated by ";" or "#". The column block ends at the first ")" that is
	// followed by the terminator.
	createTablePattern = regexp.MustCompile(
		`(?is)CREATE\s+TABLE\s+((?:[\p{L}\p{N}_]+\.)?([\p{L}\p{N}_]+))\s*\((.*?)\)\s*(?:;|#)`,
	)

	// columnNamePattern captures the leading identifier of a column definition,
	// optionally opened by a single or double quote.
	columnNamePattern = regexp.MustCompile(`^["']?([\p{L}\p{N}_]+)`)
)

// constraintKeywords start table-level constraint items, which are not columns.
var constraintKeywords = []string{"CONSTRAINT", "PRIMARY", "FOREIGN", "UNIQUE", "CHECK", "WITH", "ALTER"}

// ParseCreateTables extracts model classes from the CREATE TABLE statements in
// sqlText. It never fails: text without a recognizable statement yields an
// empty catalog, and malformed statements are skipped.
//
// This is structural pattern matching, not SQL validation:
//   - The schema prefix is discarded; the class name is the table name with a
//     trailing "_<letter>" removed (see models.FoldClassName).
//   - Columns are the leading identifiers of the items of the column block,
//     one per line or per top-level comma; items starting with a constraint
//     keyword are skipped.
//   - A later statement for the same class replaces the earlier one.
func ParseCreateTables(sqlText string) models.ClassCatalog {
	catalog := make(models.ClassCatalog)

	for _, match := range createTablePattern.FindAllStringSubmatch(sqlText, -1) {
		className := models.FoldClassName(match[2])
		catalog[className] = parseColumnBlock(match[3])
	}

	return catalog
}

// ParseCreateTablesFile reads a UTF-8 SQL file and parses it with ParseCreateTables.
func ParseCreateTablesFile(path string) (models.ClassCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sql file: %w", err)
	}
	return ParseCreateTables(string(data)), nil
}

// parseColumnBlock returns the column names of a CREATE TABLE body in order.
// A body with no surviving columns yields an empty, non-nil slice.
func parseColumnBlock(block string) []string {
	columns := []string{}
	for _, item := range splitColumnItems(block) {
		item = strings.TrimRight(strings.TrimSpace(item), ",")
		if item == "" || isConstraintItem(item) {
			continue
		}

		if m := columnNamePattern.FindStringSubmatch(item); m != nil {
			columns = append(columns, m[1])
		}
	}

	return columns
}

func isConstraintItem(item string) bool {
	upper := strings.ToUpper(item)
	for _, keyword := range constraintKeywords {
		if strings.HasPrefix(upper, keyword) {
			return true
		}
	}
	return false
}

// splitColumnItems splits a column block into items. An item ends at a
// newline or a comma outside parentheses and quotes, so "numeric(10,2)" or a
// geometry type spanning lines stays in one item. Quotes never run past the
// end of a line, and "--" comments outside quotes are dropped.
func splitColumnItems(block string) []string {
	var items []string
	var current strings.Builder
	parenDepth := 0
	var quote rune

	runes := []rune(block)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\n' {
			quote = 0
			if parenDepth == 0 {
				if strings.TrimSpace(current.String()) != "" {
					items = append(items, current.String())
				}
				current.Reset()
				continue
			}
			current.WriteRune(ch)
			continue
		}

		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(':
			parenDepth++
		case ch == ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case ch == ',' && parenDepth == 0:
			items = append(items, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}

	if current.Len() > 0 {
		items = append(items, current.String())
	}

	return items
}
