package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores free-form structured data in a jsonb column. User addresses
// use it: the shape is client-defined and the backend only round-trips it.
type JSONMap map[string]any

// Value marshals the map for the driver.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan decodes a jsonb column into the map.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonmap: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// GormDataType tells gorm which column type to use.
func (JSONMap) GormDataType() string {
	return "jsonb"
}
