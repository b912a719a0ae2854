package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CurrencySymbol prefixes every displayed amount.
const CurrencySymbol = "₹"

type rate struct {
	category string
	perKg    float64
}

// Display order of the waste type selector.
var rates = []rate{
	{"Plastic", 12},
	{"Paper/Newspaper", 8},
	{"Metal/Steel", 25},
	{"Glass", 5},
	{"Coca Cola Cans", 40},
	{"Mixed Recyclables", 10},
}

var rateIndex = func() map[string]float64 {
	index := make(map[string]float64, len(rates))
	for _, r := range rates {
		index[r.category] = r.perKg
	}
	return index
}()

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func Categories() []string {
	out := make([]string, 0, len(rates))
	for _, r := range rates {
		out = append(out, r.category)
	}
	return out
}

// Rate returns the price per kilogram for a waste category.
func Rate(category string) (float64, bool) {
	perKg, ok := rateIndex[category]
	return perKg, ok
}

func IsCategory(category string) bool {
	_, ok := rateIndex[category]
	return ok
}

// ParseWeight reads the leading decimal number of free-form input such as "4", " 2.5kg" or "1e1".
// Unparseable, non-finite and non-positive input all yield 0.
func ParseWeight(raw string) float64 {
	match := leadingNumber.FindString(raw)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(match), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return value
}

// Price is fixed on the request at submission time. Unknown categories are priced at zero.
func Price(category string, weight float64) float64 {
	perKg, _ := Rate(category)
	return perKg * weight
}

// Estimate renders the price preview for the request form, or "" when nothing should be shown.
func Estimate(category, weightText string) string {
	weight := ParseWeight(weightText)
	if category == "" || weight <= 0 {
		return ""
	}
	return FormatAmount(Price(category, weight))
}

func FormatAmount(amount float64) string {
	return fmt.Sprintf("%s%.2f", CurrencySymbol, amount)
}
