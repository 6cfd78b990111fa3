package dto

type MetafieldNode struct {
	Namespace string `json:"namespace,omitempty"`
	Key       string `json:"key,omitempty"`
	Value     string `json:"value,omitempty"`
}

type MetafieldConnection struct {
	Nodes    []MetafieldNode `json:"nodes,omitempty"`
	PageInfo ShopifyPageInfo `json:"pageInfo,omitempty"`
}

type ShopMetafieldsData struct {
	Shop struct {
		Metafields MetafieldConnection `json:"metafields"`
	} `json:"shop"`
}

type ProductMetafieldsData struct {
	Product *struct {
		ID         string              `json:"id,omitempty"`
		Metafields MetafieldConnection `json:"metafields"`
	} `json:"product,omitempty"`
}
