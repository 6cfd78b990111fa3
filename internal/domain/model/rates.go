package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Shop metafield keys holding market rates. The *_in_inr / *_in_rs names are the ones the
// storefront used before the keys were renamed; they are still read when the new key is absent.
const (
	KeyFourteenKtGoldValue       = "fourteen_kt_gold_value"
	KeyEighteenKtGoldValue       = "eighteen_kt_gold_value"
	KeyFourteenKtMakingChargePct = "fourteen_kt_making_charge_pct"
	KeyEighteenKtMakingChargePct = "eighteen_kt_making_charge_pct"
	KeyDiamondValuePerUnit       = "diamond_value_per_unit"
	KeySolitaireValuePerUnit     = "solitaire_value_per_unit"
	KeyTaxPct                    = "tax_pct"

	KeyGoldWeight     = "gold_weight"
	KeyDiamondWeight  = "diamond_weight"
	KeySolitaireCount = "solitaire_count"
)

var metafieldAliases = map[string][]string{
	KeyFourteenKtGoldValue:       {"fourteen_kt_gold_value_in_inr"},
	KeyEighteenKtGoldValue:       {"eighteen_kt_gold_value_in_inr"},
	KeyFourteenKtMakingChargePct: {"fourteen_kt_making_charges_rate_percentage_in_inr"},
	KeyEighteenKtMakingChargePct: {"eighteen_kt_making_charges_rate_percentage_in_inr"},
	KeyDiamondValuePerUnit:       {"diamond_value_in_rs"},
	KeySolitaireValuePerUnit:     {"solitaire_value_in_rs"},
	KeyTaxPct:                    {"tax_percentage_in_inr"},
	KeySolitaireCount:            {"diamond_solitaire_count"},
}

// ShopRates are the catalog-wide market rates. Making charges are fractions (0.12 = 12%),
// TaxPct is a whole-number percentage (3 = 3%).
type ShopRates struct {
	FourteenKtGoldValue       decimal.Decimal
	EighteenKtGoldValue       decimal.Decimal
	FourteenKtMakingChargePct decimal.Decimal
	EighteenKtMakingChargePct decimal.Decimal
	DiamondValuePerUnit       decimal.Decimal
	SolitaireValuePerUnit     decimal.Decimal
	TaxPct                    decimal.Decimal
}

// MetafieldIssue records a value that could not be used and was read as zero.
type MetafieldIssue struct {
	Key    string
	Value  string
	Reason string
}

func (i MetafieldIssue) String() string {
	return fmt.Sprintf("metafield %s=%q read as 0: %s", i.Key, i.Value, i.Reason)
}

func ShopRatesFromMetafields(raw map[string]string) (ShopRates, []MetafieldIssue) {
	r := metafieldReader{raw: raw}
	rates := ShopRates{
		FourteenKtGoldValue:       r.decimal(KeyFourteenKtGoldValue),
		EighteenKtGoldValue:       r.decimal(KeyEighteenKtGoldValue),
		FourteenKtMakingChargePct: r.decimal(KeyFourteenKtMakingChargePct),
		EighteenKtMakingChargePct: r.decimal(KeyEighteenKtMakingChargePct),
		DiamondValuePerUnit:       r.decimal(KeyDiamondValuePerUnit),
		SolitaireValuePerUnit:     r.decimal(KeySolitaireValuePerUnit),
		TaxPct:                    r.decimal(KeyTaxPct),
	}
	return rates, r.issues
}

func ProductAttributesFromMetafields(raw map[string]string) (ProductAttributes, []MetafieldIssue) {
	r := metafieldReader{raw: raw}
	attrs := ProductAttributes{
		GoldWeight:     r.decimal(KeyGoldWeight),
		DiamondWeight:  r.decimal(KeyDiamondWeight),
		SolitaireCount: r.decimal(KeySolitaireCount),
	}
	return attrs, r.issues
}

type metafieldReader struct {
	raw    map[string]string
	issues []MetafieldIssue
}

func (r *metafieldReader) lookup(key string) (string, string, bool) {
	if value, ok := r.raw[key]; ok && strings.TrimSpace(value) != "" {
		return key, value, true
	}
	for _, alias := range metafieldAliases[key] {
		if value, ok := r.raw[alias]; ok && strings.TrimSpace(value) != "" {
			return alias, value, true
		}
	}
	return key, "", false
}

func (r *metafieldReader) decimal(key string) decimal.Decimal {
	found, value, ok := r.lookup(key)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		r.issues = append(r.issues, MetafieldIssue{Key: found, Value: value, Reason: "not a number"})
		return decimal.Zero
	}
	if d.IsNegative() {
		r.issues = append(r.issues, MetafieldIssue{Key: found, Value: value, Reason: "negative"})
		return decimal.Zero
	}
	return d
}
