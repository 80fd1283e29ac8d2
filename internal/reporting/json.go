package reporting

import "encoding/json"

// RenderJSON renders the report as indented JSON.
func RenderJSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
