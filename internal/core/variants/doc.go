// Package variants registers the detail definition for every site type
// with the core registry. Import this package for its side effects to make
// all variants available.
package variants

import (
	"encoding/json"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/core"
)

// decodeDetail unmarshals a detail block into v. The block itself is
// required; an empty object is valid and takes the variant's defaults.
func decodeDetail(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return &core.ValidationError{Field: "detail", Reason: "required"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &core.ValidationError{Field: "detail", Reason: err.Error()}
	}
	return nil
}

// ptr returns a pointer to v. Used when applying variant defaults.
func ptr[T any](v T) *T { return &v }
