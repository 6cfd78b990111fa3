package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       string
	Title    string
	Variants []Variant
}

type Variant struct {
	ID           string
	ProductID    string
	Title        string
	Options      []string
	CurrentPrice decimal.Decimal
}

// Option returns the value of the 1-based option slot, or "" when the variant has fewer options.
func (v Variant) Option(position int) string {
	if position < 1 || position > len(v.Options) {
		return ""
	}
	return strings.TrimSpace(v.Options[position-1])
}

// MetalGrade reads the grade from the option slot the storefront reserves for metal.
func (v Variant) MetalGrade(position int) MetalGrade {
	return ParseMetalGrade(v.Option(position))
}

// DisplayName follows the storefront's own fallbacks: variant title, then first option.
func (v Variant) DisplayName() string {
	if title := strings.TrimSpace(v.Title); title != "" {
		return title
	}
	if first := v.Option(1); first != "" {
		return first
	}
	return "Unknown"
}

func (p Product) DisplayName() string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return title
	}
	return "Unknown Product"
}

type ProductAttributes struct {
	GoldWeight     decimal.Decimal
	DiamondWeight  decimal.Decimal
	SolitaireCount decimal.Decimal
}

type PricedVariant struct {
	VariantID     string
	PreviousPrice decimal.Decimal
	FinalPrice    decimal.Decimal
	Breakdown     PriceBreakdown
}

// PriceBreakdown keeps every intermediate of one price computation.
type PriceBreakdown struct {
	Grade           MetalGrade
	GoldRate        decimal.Decimal
	MakingChargePct decimal.Decimal
	GoldValue       decimal.Decimal
	DiamondValue    decimal.Decimal
	MakingCharges   decimal.Decimal
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	FinalPrice      decimal.Decimal
}
