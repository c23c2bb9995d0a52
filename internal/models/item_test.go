package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemStatusThresholds(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		want     StockStatus
	}{
		{"sıfır stok", 0, StockLow},
		{"tam kritik sınırda", 5, StockLow},
		{"kritik sınırın bir üstü", 6, StockMedium},
		{"tam orta sınırda", 20, StockMedium},
		{"orta sınırın bir üstü", 21, StockEnough},
		{"bol stok", 500, StockEnough},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := Item{Quantity: tc.quantity, LowThreshold: 5, MediumThreshold: 20}
			assert.Equal(t, tc.want, item.Status())
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleCashier))
	assert.True(t, ValidRole(RoleClerk))
	assert.False(t, ValidRole(UserRole("manager")))
	assert.False(t, ValidRole(UserRole("")))
}
