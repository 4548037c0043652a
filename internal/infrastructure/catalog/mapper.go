package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stockboard/backend/internal/domain"
)

// DecodeProduct converts a remote product payload to a ProductRecord
func DecodeProduct(data []byte) (domain.ProductRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.ProductRecord{}, fmt.Errorf("%w: expected a product object", domain.ErrMalformedResponse)
	}

	var product domain.ProductRecord
	if err := json.Unmarshal(trimmed, &product); err != nil {
		return domain.ProductRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := validate(product); err != nil {
		return domain.ProductRecord{}, err
	}
	return product, nil
}

// DecodeProducts converts a remote product list payload
func DecodeProducts(data []byte) ([]domain.ProductRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	products := make([]domain.ProductRecord, 0, len(items))
	for i, raw := range items {
		product, err := DecodeProduct(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// validate checks the fields the board relies on
func validate(product domain.ProductRecord) error {
	if product.ID == "" {
		return fmt.Errorf("%w: missing _id", domain.ErrMalformedResponse)
	}
	return nil
}
