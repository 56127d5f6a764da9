package util

import "encoding/json"

// ConvertStructToJson marshals v and returns the JSON as a string.
// Returns an empty object on marshal failure so callers can embed the
// result without a nil check.
func ConvertStructToJson(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
