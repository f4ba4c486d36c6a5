package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func TestMoneyStoredAsDecimal128(t *testing.T) {
	doc, err := bson.Marshal(bson.M{"price": MoneyFromString("9.99")})
	require.NoError(t, err)

	raw := bson.Raw(doc).Lookup("price")
	assert.Equal(t, bsontype.Decimal128, raw.Type)

	var out struct {
		Price Money `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(doc, &out))
	assert.True(t, out.Price.Equal(MoneyFromString("9.99").Decimal))
}

func TestMoneyDecodesLegacyShapes(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"double", 12.5, "12.5"},
		{"int32", int32(7), "7"},
		{"int64", int64(42), "42"},
		{"string", "3.10", "3.1"},
		{"null", nil, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := bson.Marshal(bson.M{"price": tc.value})
			require.NoError(t, err)

			var out struct {
				Price Money `bson:"price"`
			}
			require.NoError(t, bson.Unmarshal(doc, &out))
			assert.Equal(t, tc.want, out.Price.String())
		})
	}
}

func TestMoneyDecodeRejectsBoolean(t *testing.T) {
	doc, err := bson.Marshal(bson.M{"price": true})
	require.NoError(t, err)

	var out struct {
		Price Money `bson:"price"`
	}
	assert.Error(t, bson.Unmarshal(doc, &out))
}

func TestMoneyJSONIsNumber(t *testing.T) {
	body, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: MoneyFromString("19.98")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":19.98}`, string(body))
}
