package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProductRecord
		wantErr bool
	}{
		{
			name:  "all fields",
			input: `{"_id":"p1","name":"Tea","category":"Category1","barcode":"8901234567890"}`,
			want:  ProductRecord{ID: "p1", Name: "Tea", Category: "Category1", Barcode: "8901234567890"},
		},
		{
			name:  "numeric id",
			input: `{"_id":17,"name":"Soap","barcode":"1"}`,
			want:  ProductRecord{ID: "17", Name: "Soap", Barcode: "1"},
		},
		{
			name:  "null category",
			input: `{"_id":"p2","name":"Rice","category":null,"barcode":"2"}`,
			want:  ProductRecord{ID: "p2", Name: "Rice", Barcode: "2"},
		},
		{
			name:  "unknown fields kept",
			input: `{"_id":"p3","name":"Jam","barcode":"3","price":2.5}`,
			want: ProductRecord{ID: "p3", Name: "Jam", Barcode: "3", Extra: map[string]json.RawMessage{
				"price": json.RawMessage(`2.5`),
			}},
		},
		{name: "object id", input: `{"_id":{"$oid":"x"}}`, wantErr: true},
		{name: "name not a string", input: `{"_id":"p4","name":5}`, wantErr: true},
		{name: "not an object", input: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ProductRecord
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductRecord_MarshalJSON(t *testing.T) {
	record := ProductRecord{
		ID:      "p3",
		Name:    "Jam",
		Barcode: "3",
		Extra:   map[string]json.RawMessage{"price": json.RawMessage(`2.5`), "name": json.RawMessage(`"shadowed"`)},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	assert.JSONEq(t, `{"_id":"p3","name":"Jam","barcode":"3","price":2.5}`, string(data))
}

func TestProductRecord_DisplayCategory(t *testing.T) {
	assert.Equal(t, "Uncategorized", ProductRecord{}.DisplayCategory())
	assert.Equal(t, "Category2", ProductRecord{Category: "Category2"}.DisplayCategory())
}

func TestPlacementMove_JSON(t *testing.T) {
	var move PlacementMove
	require.NoError(t, json.Unmarshal([]byte(`{"itemId":"p1","sourceBucket":"Category1","destinationBucket":"Category2"}`), &move))

	assert.Equal(t, PlacementMove{ItemID: "p1", Source: BucketCategory1, Destination: BucketCategory2}, move)
}
