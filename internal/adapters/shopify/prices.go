package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"jewelry-repricer/internal/adapters/shopify/dto"
)

type PriceService interface {
	SetVariantPrice(ctx context.Context, input PriceUpdateInput) (PriceUpdateResult, error)
}

type PriceUpdateInput struct {
	ProductID string
	VariantID string
	Price     decimal.Decimal
}

// PriceUpdateResult echoes what Shopify stored.
type PriceUpdateResult struct {
	VariantID string
	Price     decimal.Decimal
}

type userErrorDetail struct {
	Field   string
	Message string
}

// UserErrorsError is returned when Shopify accepts the request but rejects the mutation.
type UserErrorsError struct {
	Action string
	Errors []userErrorDetail
}

func (e *UserErrorsError) Error() string {
	if e == nil {
		return "shopify user errors"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		field := strings.TrimSpace(err.Field)
		message := strings.TrimSpace(err.Message)
		if field == "" {
			parts = append(parts, message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("shopify %s failed with user errors", e.Action)
	}
	return fmt.Sprintf("shopify %s failed: %s", e.Action, strings.Join(parts, "; "))
}

func validatePriceInput(input PriceUpdateInput) error {
	if input.Price.IsNegative() {
		return errors.New("shopify price must be non-negative")
	}
	if strings.TrimSpace(input.VariantID) == "" {
		return errors.New("shopify variant id is required")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return errors.New("shopify product id is required")
	}
	return nil
}

// SetVariantPrice writes the price of a single variant.
func (c *Client) SetVariantPrice(ctx context.Context, input PriceUpdateInput) (PriceUpdateResult, error) {
	if c == nil {
		return PriceUpdateResult{}, errors.New("shopify client is nil")
	}
	if err := validatePriceInput(input); err != nil {
		return PriceUpdateResult{}, err
	}
	variantID := strings.TrimSpace(input.VariantID)

	query := `
mutation productVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
	productVariantsBulkUpdate(productId: $productId, variants: $variants) {
		productVariants { id price }
		userErrors { field message }
	}
}`

	var data dto.ProductVariantsBulkUpdateData
	err := c.graphqlRequest(ctx, query, map[string]any{
		"productId": strings.TrimSpace(input.ProductID),
		"variants": []map[string]any{
			{
				"id":    variantID,
				"price": formatMoneyAmount(input.Price),
			},
		},
	}, &data)
	if err != nil {
		return PriceUpdateResult{}, err
	}
	if err := userErrorsToDetailedError("productVariantsBulkUpdate", data.ProductVariantsBulkUpdate.UserErrors); err != nil {
		return PriceUpdateResult{}, err
	}

	for _, v := range data.ProductVariantsBulkUpdate.ProductVariants {
		if !strings.EqualFold(strings.TrimSpace(v.ID), variantID) {
			continue
		}
		applied, err := decimal.NewFromString(strings.TrimSpace(v.Price))
		if err != nil {
			return PriceUpdateResult{}, fmt.Errorf("shopify variant %s returned unreadable price %q", variantID, v.Price)
		}
		return PriceUpdateResult{VariantID: variantID, Price: applied}, nil
	}
	return PriceUpdateResult{}, fmt.Errorf("shopify productVariantsBulkUpdate did not return variant %s", variantID)
}

func formatMoneyAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func userErrorsToDetailedError(action string, errs []dto.ShopifyUserError) error {
	if len(errs) == 0 {
		return nil
	}
	details := make([]userErrorDetail, 0, len(errs))
	for _, e := range errs {
		message := strings.TrimSpace(e.Message)
		if message == "" {
			continue
		}
		field := ""
		if len(e.Field) > 0 {
			field = strings.Join(e.Field, ".")
		}
		details = append(details, userErrorDetail{Field: field, Message: message})
	}
	if len(details) == 0 {
		return &UserErrorsError{Action: action, Errors: []userErrorDetail{{Message: "user errors returned"}}}
	}
	return &UserErrorsError{Action: action, Errors: details}
}
