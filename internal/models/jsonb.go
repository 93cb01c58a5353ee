package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a custom type for map[string]interface{} that implements GORM interfaces
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface for GORM
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}

	return json.Unmarshal(bytes, m)
}

// AliasMap is a custom type for alias-to-canonical field mappings stored as JSONB.
// Keys are raw header variants, values are canonical field names; canonical fields
// map to themselves.
type AliasMap map[string]string

// Value implements driver.Valuer interface for GORM
func (m AliasMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM
func (m *AliasMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(AliasMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into AliasMap", value)
	}

	return json.Unmarshal(bytes, m)
}

// Clone returns a shallow copy of the alias map
func (m AliasMap) Clone() AliasMap {
	if m == nil {
		return nil
	}
	clone := make(AliasMap, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
