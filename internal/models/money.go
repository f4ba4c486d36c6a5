package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is a decimal amount. It is stored as BSON Decimal128 so totals never
// pick up binary floating point drift, and rendered in JSON as a number.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromString panics on malformed input; meant for literals and tests.
func MoneyFromString(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

// Times returns the amount multiplied by a quantity.
func (m Money) Times(quantity int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) Plus(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

// MarshalBSONValue always writes Decimal128.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("money %s: %w", m.Decimal.String(), err)
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue accepts Decimal128 plus the numeric and string shapes
// older documents may carry.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
		return nil
	case bsontype.Decimal128:
		var value primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := decimal.NewFromString(value.String())
		if err != nil {
			return err
		}
		m.Decimal = parsed
		return nil
	case bsontype.Double:
		var value float64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromFloat(value)
		return nil
	case bsontype.Int32, bsontype.Int64:
		var value int64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromInt(value)
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		m.Decimal = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
}
