package insights

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"purchase-dashboard/internal/models"
)

const (
	DefaultCategory      = "Uncategorized"
	DefaultSubCategory   = "General"
	DefaultPaymentMethod = "Credit Card"
	DefaultCustomer      = "Unknown"
	DefaultProduct       = "Unknown Item"

	DefaultQuantity = 1.0
	DefaultRating   = 3.0
	MinRating       = 1.0
	MaxRating       = 5.0

	DefaultReferenceYear = 2025
	DefaultDateStride    = 23
	daysPerFillYear      = 365
)

// Column names read from source rows.
const (
	ColCustomerName    = "CustomerName"
	ColProductCategory = "ProductCategory"
	ColSubCategory     = "SubCategory"
	ColTotalPrice      = "TotalPrice"
	ColQuantity        = "Quantity"
	ColUnitPrice       = "UnitPrice"
	ColReviewRating    = "ReviewRating"
	ColPaymentMethod   = "PaymentMethod"
	ColSKU             = "SKU"
	ColProductName     = "ProductName"
	ColPurchaseDate    = "PurchaseDate"
)

var subCategories = map[string][]string{
	"Electronics": {"Smartphones", "Laptops", "Accessories", "Audio"},
	"Clothing":    {"Men", "Women", "Kids", "Sportswear"},
	"Home":        {"Furniture", "Decor", "Kitchen", "Bedding"},
	"Books":       {"Fiction", "Non-Fiction", "Technical", "E-Books"},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
}

// FillPolicy decides the deterministic values assigned to absent fields. All
// fills are pure functions of the row index.
type FillPolicy struct {
	ReferenceYear int
	DateStride    int
	// PreserveDates keeps a parseable PurchaseDate from the source. When false
	// every record receives the scattered fill date.
	PreserveDates bool
}

func DefaultFillPolicy() FillPolicy {
	return FillPolicy{
		ReferenceYear: DefaultReferenceYear,
		DateStride:    DefaultDateStride,
	}
}

// SubCategoryFor picks list[index % len] from the fixed category mapping.
func SubCategoryFor(category string, index int) string {
	subs, ok := subCategories[category]
	if !ok {
		return DefaultSubCategory
	}
	return subs[nonNegative(index)%len(subs)]
}

// FillDate scatters records across the reference year using a fixed stride.
func (p FillPolicy) FillDate(index int) time.Time {
	stride := p.DateStride
	if stride < 1 {
		stride = DefaultDateStride
	}
	year := p.ReferenceYear
	if year == 0 {
		year = DefaultReferenceYear
	}
	offset := (nonNegative(index) * stride) % daysPerFillYear
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

type NormalizeOption func(*FillPolicy)

func WithFillPolicy(p FillPolicy) NormalizeOption {
	return func(fp *FillPolicy) { *fp = p }
}

func WithPreservedDates() NormalizeOption {
	return func(fp *FillPolicy) { fp.PreserveDates = true }
}

// Normalize coerces every row into a TransactionRecord. Output has the same
// length and order as rows; nothing is dropped.
func Normalize(rows []models.Row, opts ...NormalizeOption) []models.TransactionRecord {
	policy := DefaultFillPolicy()
	for _, opt := range opts {
		opt(&policy)
	}

	records := make([]models.TransactionRecord, len(rows))
	for i, row := range rows {
		records[i] = NormalizeRow(row, i, policy)
	}
	return records
}

func NormalizeRow(row models.Row, index int, policy FillPolicy) models.TransactionRecord {
	category := stringField(row, ColProductCategory)
	if category == "" {
		category = DefaultCategory
	}

	subCategory := stringField(row, ColSubCategory)
	if subCategory == "" {
		subCategory = SubCategoryFor(category, index)
	}

	productName := stringField(row, ColProductName)
	sku := stringField(row, ColSKU)
	if sku == "" {
		sku = productName
	}
	if sku == "" {
		sku = fmt.Sprintf("SKU-%d", index)
	}
	if productName == "" {
		productName = DefaultProduct
	}

	customer := stringField(row, ColCustomerName)
	if customer == "" {
		customer = DefaultCustomer
	}

	payment := stringField(row, ColPaymentMethod)
	if payment == "" {
		payment = DefaultPaymentMethod
	}

	total, ok := numberField(row, ColTotalPrice)
	if !ok || total < 0 {
		total = 0
	}

	// Zero counts as missing for quantity and rating.
	quantity, ok := numberField(row, ColQuantity)
	if !ok || quantity <= 0 {
		quantity = DefaultQuantity
	}

	rating, ok := numberField(row, ColReviewRating)
	if !ok || rating == 0 {
		rating = DefaultRating
	}
	rating = math.Min(math.Max(rating, MinRating), MaxRating)

	unitPrice, ok := numberField(row, ColUnitPrice)
	if !ok {
		unitPrice = 0
	}

	date := policy.FillDate(index)
	if policy.PreserveDates {
		if parsed, ok := dateField(row, ColPurchaseDate); ok {
			date = parsed
		}
	}

	return models.TransactionRecord{
		Index:         index,
		CustomerName:  customer,
		SKU:           sku,
		ProductName:   productName,
		Category:      category,
		SubCategory:   subCategory,
		PaymentMethod: payment,
		TotalPrice:    total,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		ReviewRating:  rating,
		PurchaseDate:  date,
	}
}

func stringField(row models.Row, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// ParseNumber parses a scalar as a finite float. Text may carry surrounding
// spaces, a leading '$' and thousands separators.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case bool:
		return 0, false
	case []byte:
		return ParseNumber(string(n))
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return ParseNumber(fmt.Sprint(n))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberField(row models.Row, key string) (float64, bool) {
	return ParseNumber(row[key])
}

func dateField(row models.Row, key string) (time.Time, bool) {
	switch v := row[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func nonNegative(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
