package models

import "fmt"

// DefaultDatasourceType is the adapter used when ConnectionParams.Type is empty.
const DefaultDatasourceType = "postgres"

// ConnectionParams carries already-resolved connection details for a single
// extraction call. Credentials are never cached or logged.
type ConnectionParams struct {
	Type     string `json:"type,omitempty"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode,omitempty"`
}

// DatasourceType returns Type, defaulting to postgres.
func (p ConnectionParams) DatasourceType() string {
	if p.Type == "" {
		return DefaultDatasourceType
	}
	return p.Type
}

// ConfigMap returns the generic config map consumed by datasource adapters.
func (p ConnectionParams) ConfigMap() map[string]any {
	cfg := map[string]any{
		"host":     p.Host,
		"user":     p.User,
		"password": p.Password,
		"database": p.Database,
	}
	if p.Port != 0 {
		cfg["port"] = p.Port
	}
	if p.SSLMode != "" {
		cfg["ssl_mode"] = p.SSLMode
	}
	return cfg
}

// String describes the target without the password.
func (p ConnectionParams) String() string {
	return fmt.Sprintf("%s://%s@%s:%d/%s", p.DatasourceType(), p.User, p.Host, p.Port, p.Database)
}
