package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"; DROP TABLE carts", "DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortOrder(tt.in), tt.in)
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "price", ValidateSortField("price", ProductSortFields, "created_at"))
	assert.Equal(t, "priority", ValidateSortField(" priority ", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password_hash", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("price", ReviewSortFields, "created_at"))
}
