// Package merchant normalizes raw merchant strings using stored mappings.
package merchant

import (
	"strings"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

// Resolve returns the normalized name of the first mapping whose original
// name equals raw, ignoring case. Raw is returned unchanged when it is empty
// or nothing matches.
func Resolve(raw string, mappings []model.MerchantMapping) string {
	if raw == "" {
		return raw
	}
	for _, m := range mappings {
		if strings.EqualFold(m.OriginalName, raw) {
			return m.NormalizedName
		}
	}
	return raw
}
