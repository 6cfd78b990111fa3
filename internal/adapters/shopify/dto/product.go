package dto

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []any                  `json:"path,omitempty"`
	Extensions map[string]any         `json:"extensions,omitempty"`
	Locations  []GraphQLErrorLocation `json:"locations,omitempty"`
}

type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type ShopifyUserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

type ShopifyPageInfo struct {
	HasNextPage bool   `json:"hasNextPage,omitempty"`
	EndCursor   string `json:"endCursor,omitempty"`
}

type ShopifyProduct struct {
	ID       string                   `json:"id,omitempty"`
	Title    string                   `json:"title,omitempty"`
	Variants ShopifyVariantConnection `json:"variants,omitempty"`
}

type ShopifyProductConnection struct {
	Nodes    []ShopifyProduct `json:"nodes,omitempty"`
	PageInfo ShopifyPageInfo  `json:"pageInfo,omitempty"`
}

type ShopifyVariantConnection struct {
	Nodes    []ShopifyVariant `json:"nodes,omitempty"`
	PageInfo ShopifyPageInfo  `json:"pageInfo,omitempty"`
}

type ShopifySelectedOption struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

type ShopifyVariant struct {
	ID              string                  `json:"id,omitempty"`
	Title           string                  `json:"title,omitempty"`
	Price           string                  `json:"price,omitempty"`
	SelectedOptions []ShopifySelectedOption `json:"selectedOptions,omitempty"`
}

type ProductsQueryData struct {
	Products ShopifyProductConnection `json:"products"`
}

type ProductVariantsQueryData struct {
	Product *struct {
		ID       string                   `json:"id,omitempty"`
		Variants ShopifyVariantConnection `json:"variants,omitempty"`
	} `json:"product,omitempty"`
}

type ProductVariantsBulkUpdateData struct {
	ProductVariantsBulkUpdate struct {
		ProductVariants []ShopifyVariant   `json:"productVariants,omitempty"`
		UserErrors      []ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"productVariantsBulkUpdate"`
}
