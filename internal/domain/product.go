package domain

import (
	"encoding/json"
	"fmt"
)

// BucketName names one board column
type BucketName string

// Default bucket set shipped with the board
const (
	BucketUncategorized BucketName = "Uncategorized"
	BucketCategory1     BucketName = "Category1"
	BucketCategory2     BucketName = "Category2"
)

// DefaultBuckets returns the default known bucket set in display order
func DefaultBuckets() []BucketName {
	return []BucketName{BucketUncategorized, BucketCategory1, BucketCategory2}
}

// ProductRecord is a read-only copy of a product held by the remote store
type ProductRecord struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Barcode  string `json:"barcode"`

	// Extra holds remote-defined fields the client does not interpret
	Extra map[string]json.RawMessage `json:"-"`
}

// DisplayCategory returns the category, or Uncategorized when the record has none
func (p ProductRecord) DisplayCategory() string {
	if p.Category == "" {
		return string(BucketUncategorized)
	}
	return p.Category
}

// MarshalJSON writes the known fields merged with Extra
func (p ProductRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	out[fieldID] = p.ID
	out[fieldName] = p.Name
	out[fieldBarcode] = p.Barcode
	if p.Category != "" {
		out[fieldCategory] = p.Category
	}
	return json.Marshal(out)
}

// Wire keys the record interprets; everything else lands in Extra
const (
	fieldID       = "_id"
	fieldName     = "name"
	fieldCategory = "category"
	fieldBarcode  = "barcode"
)

// UnmarshalJSON reads the known fields and keeps the rest in Extra.
// Ids may arrive as strings or numbers.
func (p *ProductRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var record ProductRecord
	id, err := identifierField(fields[fieldID])
	if err != nil {
		return fmt.Errorf("%s: %w", fieldID, err)
	}
	record.ID = id

	for key, target := range map[string]*string{
		fieldName:     &record.Name,
		fieldCategory: &record.Category,
		fieldBarcode:  &record.Barcode,
	} {
		if err := optionalString(fields[key], target); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	for key, raw := range fields {
		switch key {
		case fieldID, fieldName, fieldCategory, fieldBarcode:
			continue
		}
		if record.Extra == nil {
			record.Extra = make(map[string]json.RawMessage)
		}
		record.Extra[key] = raw
	}

	*p = record
	return nil
}

func identifierField(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number")
	}
	return n.String(), nil
}

func optionalString(raw json.RawMessage, target *string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}

// PlacementMove is a request to move one item between buckets
type PlacementMove struct {
	ItemID      string     `json:"itemId"`
	Source      BucketName `json:"sourceBucket"`
	Destination BucketName `json:"destinationBucket"`
}

// CategoryStat is one row of the remote analytics aggregation
type CategoryStat struct {
	Category string `json:"_id"`
	Count    int    `json:"count"`
}

// Analytics is the remote reporting summary
type Analytics struct {
	CategoryStats  []CategoryStat  `json:"categoryStats"`
	RecentProducts []ProductRecord `json:"recentProducts"`
}

// SearchQuery filters the remote product search
type SearchQuery struct {
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}
