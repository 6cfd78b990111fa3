// Package pricing turns shop rates and product attributes into variant prices.
package pricing

import (
	"github.com/shopspring/decimal"

	"jewelry-repricer/internal/domain/model"
)

const priceScale = 2

var hundred = decimal.NewFromInt(100)

// Quote computes the price of one variant and returns every intermediate value.
// Unrecognized grades contribute no gold value and no making charge.
func Quote(rates model.ShopRates, attrs model.ProductAttributes, grade model.MetalGrade) model.PriceBreakdown {
	goldRate, makingChargePct := gradeRates(rates, grade)

	goldValue := attrs.GoldWeight.Mul(goldRate)
	diamondValue := attrs.DiamondWeight.Mul(rates.DiamondValuePerUnit).
		Add(attrs.SolitaireCount.Mul(rates.SolitaireValuePerUnit))
	makingCharges := goldValue.Mul(makingChargePct)

	subtotal := goldValue.Add(diamondValue).Add(makingCharges)
	tax := subtotal.Mul(rates.TaxPct).Div(hundred)

	return model.PriceBreakdown{
		Grade:           grade,
		GoldRate:        goldRate,
		MakingChargePct: makingChargePct,
		GoldValue:       goldValue,
		DiamondValue:    diamondValue,
		MakingCharges:   makingCharges,
		Subtotal:        subtotal,
		Tax:             tax,
		FinalPrice:      subtotal.Add(tax).Round(priceScale),
	}
}

// ComputePrice returns the final price rounded to cents.
func ComputePrice(rates model.ShopRates, attrs model.ProductAttributes, grade model.MetalGrade) decimal.Decimal {
	return Quote(rates, attrs, grade).FinalPrice
}

// NeedsUpdate reports whether the stored price differs from the computed one.
// There is no tolerance: any difference triggers a write.
func NeedsUpdate(previous, final decimal.Decimal) bool {
	return !previous.Equal(final)
}

// PriceVariant prices a variant and pairs the result with its stored price.
func PriceVariant(rates model.ShopRates, attrs model.ProductAttributes, variant model.Variant, metalOption int) model.PricedVariant {
	breakdown := Quote(rates, attrs, variant.MetalGrade(metalOption))
	return model.PricedVariant{
		VariantID:     variant.ID,
		PreviousPrice: variant.CurrentPrice,
		FinalPrice:    breakdown.FinalPrice,
		Breakdown:     breakdown,
	}
}

// FormatPrice renders a price the way the storefront stores it.
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(priceScale)
}

func gradeRates(rates model.ShopRates, grade model.MetalGrade) (decimal.Decimal, decimal.Decimal) {
	switch grade {
	case model.Grade14KT:
		return rates.FourteenKtGoldValue, rates.FourteenKtMakingChargePct
	case model.Grade18KT:
		return rates.EighteenKtGoldValue, rates.EighteenKtMakingChargePct
	default:
		return decimal.Zero, decimal.Zero
	}
}
