package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a jsonb-backed list of strings, used for small lookup sets
// such as vendor country coverage.
type StringList []string

// Contains reports whether the list includes s.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("StringList: unsupported Scan type %T", src)
	}
}

func (l StringList) Value() (driver.Value, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("StringList: %w", err)
	}
	return string(raw), nil
}
