package financial

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// LinearMultiplier converts a monthly principal and interest payment into a
// purchase price. It roughly tracks a 30-year fixed loan near 6.5% and is not
// a real amortization formula.
const LinearMultiplier = 166.0

// AffordabilityModel converts between a monthly principal and interest
// payment and the purchase price it supports.
type AffordabilityModel interface {
	Name() string
	PriceForPayment(principalAndInterest float64) float64
	PaymentForPrice(price float64) float64
}

// LinearModel multiplies the payment by a fixed factor. A zero Multiplier
// uses LinearMultiplier.
type LinearModel struct {
	Multiplier float64
}

func (m LinearModel) multiplier() float64 {
	if m.Multiplier <= 0 {
		return LinearMultiplier
	}
	return m.Multiplier
}

// Name identifies the model in logs and metrics.
func (m LinearModel) Name() string { return "linear" }

// PriceForPayment returns payment times the multiplier.
func (m LinearModel) PriceForPayment(principalAndInterest float64) float64 {
	if principalAndInterest <= 0 {
		return 0
	}
	return principalAndInterest * m.multiplier()
}

// PaymentForPrice is the inverse of PriceForPayment.
func (m LinearModel) PaymentForPrice(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return price / m.multiplier()
}

// AmortizedModel prices a fixed-rate fully amortizing loan.
//
//	monthlyRate = AnnualRate / 12
//	price       = payment * (1 - (1+r)^-n) / r
//	payment     = price * r * (1+r)^n / ((1+r)^n - 1)
type AmortizedModel struct {
	AnnualRate float64 // 0.065 for 6.5%
	TermYears  int
}

// Name identifies the model in logs and metrics.
func (m AmortizedModel) Name() string { return "amortized" }

func (m AmortizedModel) periods() float64 {
	if m.TermYears <= 0 {
		return 360
	}
	return float64(m.TermYears * 12)
}

// PriceForPayment returns the present value of n payments.
func (m AmortizedModel) PriceForPayment(principalAndInterest float64) float64 {
	if principalAndInterest <= 0 {
		return 0
	}
	n := m.periods()
	r := m.AnnualRate / 12
	if r <= 0 {
		return roundCents(principalAndInterest * n)
	}
	return roundCents(principalAndInterest * (1 - math.Pow(1+r, -n)) / r)
}

// PaymentForPrice returns the level monthly payment that retires price.
func (m AmortizedModel) PaymentForPrice(price float64) float64 {
	if price <= 0 {
		return 0
	}
	n := m.periods()
	r := m.AnnualRate / 12
	if r <= 0 {
		return roundCents(price / n)
	}
	factor := math.Pow(1+r, n)
	return roundCents(price * r * factor / (factor - 1))
}

// NewModel selects a model by name. Anything other than "amortized" yields
// the linear model.
func NewModel(name string, annualRate float64, termYears int) AffordabilityModel {
	if strings.EqualFold(strings.TrimSpace(name), "amortized") {
		return AmortizedModel{AnnualRate: annualRate, TermYears: termYears}
	}
	return LinearModel{}
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
