package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	u := uuid.MustParse("0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d")
	tests := []struct {
		kind Kind
		want string
	}{
		{Import, "imp_0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d"},
		{Transaction, "txn_0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d"},
		{Account, "acc_0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.kind, u))
	}
}

func TestNew_Unique(t *testing.T) {
	a, b := New(Import), New(Import)
	assert.NotEqual(t, a, b)
	assert.True(t, Is(Import, a))
	assert.False(t, Is(Transaction, a))
}

func TestParse(t *testing.T) {
	kind, u, err := Parse("rul_0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d")
	require.NoError(t, err)
	assert.Equal(t, Rule, kind)
	assert.Equal(t, "0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d", u.String())
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"imp",
		"_0b1f8f5e-3c1d-4d43-9a42-6f3f4b1a2c3d",
		"imp_not-a-uuid",
	}
	for _, s := range tests {
		_, _, err := Parse(s)
		assert.Error(t, err, "Parse(%q)", s)
	}
}
