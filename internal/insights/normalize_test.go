package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-dashboard/internal/models"
)

func TestNormalizeRow_Defaults(t *testing.T) {
	r := NormalizeRow(models.Row{}, 5, DefaultFillPolicy())

	assert.Equal(t, DefaultCategory, r.Category)
	assert.Equal(t, DefaultSubCategory, r.SubCategory)
	assert.Equal(t, DefaultPaymentMethod, r.PaymentMethod)
	assert.Equal(t, DefaultCustomer, r.CustomerName)
	assert.Equal(t, DefaultProduct, r.ProductName)
	assert.Equal(t, "SKU-5", r.SKU)
	assert.Equal(t, 0.0, r.TotalPrice)
	assert.Equal(t, 1.0, r.Quantity)
	assert.Equal(t, 3.0, r.ReviewRating)
	assert.Equal(t, 0.0, r.UnitPrice)
	assert.Equal(t, time.Date(2025, time.April, 26, 0, 0, 0, 0, time.UTC), r.PurchaseDate)
}

func TestNormalizeRow_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		row   models.Row
		check func(t *testing.T, r models.TransactionRecord)
	}{
		{
			name: "currency text",
			row:  models.Row{ColTotalPrice: " $1,200.50 "},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, 1200.5, r.TotalPrice)
			},
		},
		{
			name: "non numeric falls back",
			row:  models.Row{ColTotalPrice: "abc", ColQuantity: "many", ColReviewRating: "good"},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, 0.0, r.TotalPrice)
				assert.Equal(t, 1.0, r.Quantity)
				assert.Equal(t, 3.0, r.ReviewRating)
			},
		},
		{
			name: "zero quantity and rating count as missing",
			row:  models.Row{ColQuantity: 0.0, ColReviewRating: "0"},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, 1.0, r.Quantity)
				assert.Equal(t, 3.0, r.ReviewRating)
			},
		},
		{
			name: "rating clamped",
			row:  models.Row{ColReviewRating: int64(9)},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, 5.0, r.ReviewRating)
			},
		},
		{
			name: "negative total",
			row:  models.Row{ColTotalPrice: -12.5},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, 0.0, r.TotalPrice)
			},
		},
		{
			name: "sku falls back to product name",
			row:  models.Row{ColProductName: "Desk Lamp"},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, "Desk Lamp", r.SKU)
				assert.Equal(t, "Desk Lamp", r.ProductName)
			},
		},
		{
			name: "known category picks sub-category by index",
			row:  models.Row{ColProductCategory: "Electronics"},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, "Smartphones", r.SubCategory)
			},
		},
		{
			name: "explicit sub-category kept",
			row:  models.Row{ColProductCategory: "Books", ColSubCategory: "Comics"},
			check: func(t *testing.T, r models.TransactionRecord) {
				assert.Equal(t, "Comics", r.SubCategory)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, NormalizeRow(tt.row, 0, DefaultFillPolicy()))
		})
	}
}

func TestNormalize_LengthOrderAndDeterminism(t *testing.T) {
	rows := []models.Row{
		{ColProductCategory: "Electronics", ColTotalPrice: "10"},
		{ColProductCategory: "Electronics", ColTotalPrice: "20"},
		{ColProductCategory: "Clothing", ColTotalPrice: "30"},
		{},
	}

	first := Normalize(rows)
	second := Normalize(rows)

	require.Len(t, first, len(rows))
	assert.Equal(t, first, second)
	assert.Equal(t, "Laptops", first[1].SubCategory)
	assert.Equal(t, "Kids", first[2].SubCategory)
	for i, r := range first {
		assert.Equal(t, i, r.Index)
		assert.False(t, r.PurchaseDate.IsZero())
	}
}

func TestNormalize_DateFill(t *testing.T) {
	rows := []models.Row{{ColPurchaseDate: "2024-03-10"}, {ColPurchaseDate: "not a date"}}

	filled := Normalize(rows)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), filled[0].PurchaseDate)
	assert.Equal(t, time.Date(2025, time.January, 24, 0, 0, 0, 0, time.UTC), filled[1].PurchaseDate)

	preserved := Normalize(rows, WithPreservedDates())
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), preserved[0].PurchaseDate)
	assert.Equal(t, filled[1].PurchaseDate, preserved[1].PurchaseDate)
}

func TestFillPolicy_StaysInReferenceYear(t *testing.T) {
	p := FillPolicy{ReferenceYear: 2023, DateStride: 23}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 2023, p.FillDate(i).Year())
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{"42", 42, true},
		{"  3.5 ", 3.5, true},
		{"$2,000", 2000, true},
		{[]byte("7"), 7, true},
		{int64(3), 3, true},
		{12, 12, true},
		{"", 0, false},
		{nil, 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{true, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}
