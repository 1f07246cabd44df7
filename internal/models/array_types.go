package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/lib/pq"
)

// TextArray is a TEXT[] column. NULL scans to an empty list and an empty
// list is stored as '{}', so the JSON form is always an array.
type TextArray []string

// Value implements the driver.Valuer interface
func (a TextArray) Value() (driver.Value, error) {
	if a == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(a).Value()
}

// Scan implements the sql.Scanner interface
func (a *TextArray) Scan(src interface{}) error {
	if src == nil {
		*a = TextArray{}
		return nil
	}
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if arr == nil {
		arr = pq.StringArray{}
	}
	*a = TextArray(arr)
	return nil
}

// MarshalJSON encodes nil as an empty array
func (a TextArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}
