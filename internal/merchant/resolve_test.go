package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rudivdz85/nautical-fin/internal/model"
)

func TestResolve(t *testing.T) {
	mappings := []model.MerchantMapping{
		{OriginalName: "AMZN MKTP US", NormalizedName: "Amazon"},
		{OriginalName: "amzn mktp us", NormalizedName: "Amazon (dup)"},
		{OriginalName: "SQ *BLUE BOTTLE", NormalizedName: "Blue Bottle Coffee"},
	}

	tests := []struct {
		raw  string
		want string
	}{
		{"AMZN MKTP US", "Amazon"},
		{"amzn mktp us", "Amazon"}, // first match wins
		{"Sq *Blue Bottle", "Blue Bottle Coffee"},
		{"AMZN MKTP", "AMZN MKTP"}, // exact only, no prefix match
		{"UNKNOWN SHOP", "UNKNOWN SHOP"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.raw, mappings), "Resolve(%q)", tt.raw)
	}
}

func TestResolve_NoMappings(t *testing.T) {
	assert.Equal(t, "Shell", Resolve("Shell", nil))
}

func TestResolve_EmptyRawIgnoresEmptyMapping(t *testing.T) {
	mappings := []model.MerchantMapping{{OriginalName: "", NormalizedName: "Something"}}
	assert.Equal(t, "", Resolve("", mappings))
}
