package datasource

// GeometryTable is one entry of the database's spatial catalog.
type GeometryTable struct {
	SchemaName     string
	TableName      string
	GeometryColumn string
}

// QualifiedName returns schema.table, or just the table when schema is empty.
func (g GeometryTable) QualifiedName() string {
	if g.SchemaName == "" {
		return g.TableName
	}
	return g.SchemaName + "." + g.TableName
}
