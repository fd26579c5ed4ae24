package engine

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round1 rounds v to one decimal place, half away from zero. The value is
// rounded in decimal so that inputs like 1.05 round up as written.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// RoundInt rounds v to the nearest integer, half away from zero.
func RoundInt(v float64) int {
	return int(decimal.NewFromFloat(v).Round(0).IntPart())
}

// PercentOf returns part/total as a whole percentage rounded half-up.
// A non-positive total yields 0.
func PercentOf(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(part)).Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).Round(0).IntPart())
}

// ShareOf returns part/total as a percentage with one decimal place.
// A non-positive total yields 0.
func ShareOf(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).Round(1).InexactFloat64()
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
