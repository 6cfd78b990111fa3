package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"jewelry-repricer/internal/adapters/shopify/dto"
	"jewelry-repricer/internal/domain/model"
)

// CatalogService reads the rates, attributes and products the repricing run works from.
type CatalogService interface {
	ShopRates(ctx context.Context) (model.ShopRates, error)
	ProductAttributes(ctx context.Context, productID string) (model.ProductAttributes, error)
	ListProducts(ctx context.Context, pageSize, maxPages int) ([]model.Product, error)
}

const (
	metafieldPageSize = 250
	variantPageSize   = 100
)

func (c *Client) ShopRates(ctx context.Context) (model.ShopRates, error) {
	if c == nil {
		return model.ShopRates{}, errors.New("shopify client is nil")
	}
	raw, err := c.shopMetafields(ctx)
	if err != nil {
		return model.ShopRates{}, fmt.Errorf("shop metafields: %w", err)
	}
	rates, issues := model.ShopRatesFromMetafields(raw)
	for _, issue := range issues {
		c.logWarning("shop " + issue.String())
	}
	return rates, nil
}

func (c *Client) ProductAttributes(ctx context.Context, productID string) (model.ProductAttributes, error) {
	if c == nil {
		return model.ProductAttributes{}, errors.New("shopify client is nil")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.ProductAttributes{}, errors.New("shopify product id is required")
	}
	raw, err := c.productMetafields(ctx, productID)
	if err != nil {
		return model.ProductAttributes{}, fmt.Errorf("product %s metafields: %w", productID, err)
	}
	attrs, issues := model.ProductAttributesFromMetafields(raw)
	for _, issue := range issues {
		c.logWarning(fmt.Sprintf("product %s %s", productID, issue.String()))
	}
	return attrs, nil
}

// ListProducts walks the product connection page by page. maxPages <= 0 means every page.
func (c *Client) ListProducts(ctx context.Context, pageSize, maxPages int) ([]model.Product, error) {
	if c == nil {
		return nil, errors.New("shopify client is nil")
	}
	if pageSize <= 0 {
		return nil, errors.New("shopify page size must be positive")
	}

	query := `
query products($first: Int!, $after: String, $variantsFirst: Int!) {
	products(first: $first, after: $after) {
		nodes {
			id
			title
			variants(first: $variantsFirst) {
				nodes {
					id
					title
					price
					selectedOptions { name value }
				}
				pageInfo { hasNextPage endCursor }
			}
		}
		pageInfo { hasNextPage endCursor }
	}
}`

	var (
		products []model.Product
		cursor   string
		page     int
	)
	for {
		page++
		variables := map[string]any{
			"first":         pageSize,
			"variantsFirst": variantPageSize,
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		var data dto.ProductsQueryData
		if err := c.graphqlRequest(ctx, query, variables, &data); err != nil {
			return nil, fmt.Errorf("list products page %d: %w", page, err)
		}

		for _, sp := range data.Products.Nodes {
			variants := sp.Variants.Nodes
			if sp.Variants.PageInfo.HasNextPage {
				rest, err := c.listRemainingVariants(ctx, sp.ID, sp.Variants.PageInfo.EndCursor)
				if err != nil {
					return nil, err
				}
				variants = append(variants, rest...)
			}
			products = append(products, c.mapShopifyProduct(sp, variants))
		}
		c.logInfo(fmt.Sprintf("shopify products page=%d fetched=%d total=%d", page, len(data.Products.Nodes), len(products)))

		if !data.Products.PageInfo.HasNextPage || data.Products.PageInfo.EndCursor == "" {
			break
		}
		if maxPages > 0 && page >= maxPages {
			c.logWarning(fmt.Sprintf("shopify product listing stopped at max pages=%d", maxPages))
			break
		}
		cursor = data.Products.PageInfo.EndCursor
	}

	return products, nil
}

func (c *Client) listRemainingVariants(ctx context.Context, productID, after string) ([]dto.ShopifyVariant, error) {
	query := `
query productVariants($id: ID!, $first: Int!, $after: String) {
	product(id: $id) {
		id
		variants(first: $first, after: $after) {
			nodes {
				id
				title
				price
				selectedOptions { name value }
			}
			pageInfo { hasNextPage endCursor }
		}
	}
}`

	var variants []dto.ShopifyVariant
	for after != "" {
		var data dto.ProductVariantsQueryData
		err := c.graphqlRequest(ctx, query, map[string]any{
			"id":    productID,
			"first": variantPageSize,
			"after": after,
		}, &data)
		if err != nil {
			return nil, fmt.Errorf("product %s variants: %w", productID, err)
		}
		if data.Product == nil {
			return nil, fmt.Errorf("shopify product %s not found", productID)
		}
		variants = append(variants, data.Product.Variants.Nodes...)
		if !data.Product.Variants.PageInfo.HasNextPage {
			break
		}
		after = data.Product.Variants.PageInfo.EndCursor
	}
	return variants, nil
}

func (c *Client) shopMetafields(ctx context.Context) (map[string]string, error) {
	query := `
query shopMetafields($first: Int!, $after: String) {
	shop {
		metafields(first: $first, after: $after) {
			nodes { namespace key value }
			pageInfo { hasNextPage endCursor }
		}
	}
}`

	return c.collectMetafields(ctx, func(after string) (dto.MetafieldConnection, error) {
		variables := map[string]any{"first": metafieldPageSize}
		if after != "" {
			variables["after"] = after
		}
		var data dto.ShopMetafieldsData
		if err := c.graphqlRequest(ctx, query, variables, &data); err != nil {
			return dto.MetafieldConnection{}, err
		}
		return data.Shop.Metafields, nil
	})
}

func (c *Client) productMetafields(ctx context.Context, productID string) (map[string]string, error) {
	query := `
query productMetafields($id: ID!, $first: Int!, $after: String) {
	product(id: $id) {
		id
		metafields(first: $first, after: $after) {
			nodes { namespace key value }
			pageInfo { hasNextPage endCursor }
		}
	}
}`

	return c.collectMetafields(ctx, func(after string) (dto.MetafieldConnection, error) {
		variables := map[string]any{
			"id":    productID,
			"first": metafieldPageSize,
		}
		if after != "" {
			variables["after"] = after
		}
		var data dto.ProductMetafieldsData
		if err := c.graphqlRequest(ctx, query, variables, &data); err != nil {
			return dto.MetafieldConnection{}, err
		}
		if data.Product == nil {
			return dto.MetafieldConnection{}, fmt.Errorf("shopify product %s not found", productID)
		}
		return data.Product.Metafields, nil
	})
}

// collectMetafields flattens metafields into key -> value. Keys are matched without their
// namespace; when two namespaces share a key the first one listed is kept.
func (c *Client) collectMetafields(ctx context.Context, fetch func(after string) (dto.MetafieldConnection, error)) (map[string]string, error) {
	values := make(map[string]string)
	seenIn := make(map[string]string)
	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := fetch(after)
		if err != nil {
			return nil, err
		}
		for _, node := range conn.Nodes {
			key := strings.TrimSpace(node.Key)
			if key == "" {
				continue
			}
			if namespace, ok := seenIn[key]; ok {
				c.logWarning(fmt.Sprintf("metafield %s defined in %s and %s, keeping %s", key, namespace, node.Namespace, namespace))
				continue
			}
			seenIn[key] = node.Namespace
			values[key] = node.Value
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			break
		}
		after = conn.PageInfo.EndCursor
	}
	return values, nil
}

func (c *Client) mapShopifyProduct(p dto.ShopifyProduct, variants []dto.ShopifyVariant) model.Product {
	product := model.Product{
		ID:       strings.TrimSpace(p.ID),
		Title:    strings.TrimSpace(p.Title),
		Variants: make([]model.Variant, 0, len(variants)),
	}
	for _, v := range variants {
		options := make([]string, 0, len(v.SelectedOptions))
		for _, option := range v.SelectedOptions {
			options = append(options, strings.TrimSpace(option.Value))
		}
		product.Variants = append(product.Variants, model.Variant{
			ID:           strings.TrimSpace(v.ID),
			ProductID:    product.ID,
			Title:        strings.TrimSpace(v.Title),
			Options:      options,
			CurrentPrice: c.parsePrice(v),
		})
	}
	return product
}

// parsePrice reads the stored variant price; an absent price counts as 0.
func (c *Client) parsePrice(v dto.ShopifyVariant) decimal.Decimal {
	raw := strings.TrimSpace(v.Price)
	if raw == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		c.logWarning(fmt.Sprintf("shopify variant %s has unreadable price %q, treating as 0", v.ID, raw))
		return decimal.Zero
	}
	return price
}
