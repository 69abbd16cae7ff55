package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightScale is the number of decimal places weights are stored with.
// Gold weights are tracked to the milligram.
const WeightScale int32 = 3

// Weight is a value object representing a gram-denominated gold weight.
// All arithmetic is exact decimal arithmetic; comparisons are exact.
// It is immutable - all operations return new Weight instances.
type Weight struct {
	grams decimal.Decimal
}

// NewWeight creates a Weight from a decimal gram value
func NewWeight(grams decimal.Decimal) (Weight, error) {
	if grams.IsNegative() {
		return Weight{}, errors.New("weight cannot be negative")
	}
	return Weight{grams: grams}, nil
}

// NewWeightFromString creates a Weight from a string representation
func NewWeightFromString(grams string) (Weight, error) {
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight string: %w", err)
	}
	return NewWeight(d)
}

// NewWeightFromFloat creates a Weight from a float64 gram value
func NewWeightFromFloat(grams float64) (Weight, error) {
	return NewWeight(decimal.NewFromFloat(grams))
}

// MustNewWeight creates a Weight and panics on error
func MustNewWeight(grams decimal.Decimal) Weight {
	w, err := NewWeight(grams)
	if err != nil {
		panic(err)
	}
	return w
}

// MustWeightFromString creates a Weight from a string and panics on error
func MustWeightFromString(grams string) Weight {
	w, err := NewWeightFromString(grams)
	if err != nil {
		panic(err)
	}
	return w
}

// ZeroWeight returns a zero weight
func ZeroWeight() Weight {
	return Weight{grams: decimal.Zero}
}

// Grams returns the decimal gram value
func (w Weight) Grams() decimal.Decimal {
	return w.grams
}

// IsZero returns true if the weight is zero
func (w Weight) IsZero() bool {
	return w.grams.IsZero()
}

// IsPositive returns true if the weight is strictly positive
func (w Weight) IsPositive() bool {
	return w.grams.IsPositive()
}

// Add returns a new Weight with the sum of both weights
func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams.Add(other.grams)}
}

// Subtract returns a new Weight with the difference.
// Returns error if the result would be negative.
func (w Weight) Subtract(other Weight) (Weight, error) {
	result := w.grams.Sub(other.grams)
	if result.IsNegative() {
		return Weight{}, errors.New("resulting weight would be negative")
	}
	return Weight{grams: result}, nil
}

// MultiplyBy returns a new Weight multiplied by the given factor
func (w Weight) MultiplyBy(factor decimal.Decimal) (Weight, error) {
	result := w.grams.Mul(factor)
	if result.IsNegative() {
		return Weight{}, errors.New("resulting weight would be negative")
	}
	return Weight{grams: result}, nil
}

// Round returns a new Weight rounded to the ledger scale
func (w Weight) Round() Weight {
	return Weight{grams: w.grams.Round(WeightScale)}
}

// Equals returns true if both weights are exactly equal
func (w Weight) Equals(other Weight) bool {
	return w.grams.Equal(other.grams)
}

// LessThan returns true if this weight is less than the other
func (w Weight) LessThan(other Weight) bool {
	return w.grams.LessThan(other.grams)
}

// GreaterThan returns true if this weight is greater than the other
func (w Weight) GreaterThan(other Weight) bool {
	return w.grams.GreaterThan(other.grams)
}

// GreaterThanOrEqual returns true if this weight is at least the other
func (w Weight) GreaterThanOrEqual(other Weight) bool {
	return w.grams.GreaterThanOrEqual(other.grams)
}

// SufficientFor returns true if this weight covers the required amount.
// Equality counts as sufficient.
func (w Weight) SufficientFor(required Weight) bool {
	return w.grams.GreaterThanOrEqual(required.grams)
}

// Deficit returns how much more is needed to meet the required amount.
// Returns zero if the weight is sufficient.
func (w Weight) Deficit(required Weight) Weight {
	if w.grams.GreaterThanOrEqual(required.grams) {
		return ZeroWeight()
	}
	return Weight{grams: required.grams.Sub(w.grams)}
}

// String returns the gram value as a string
func (w Weight) String() string {
	return w.grams.String()
}

// StringFixed returns the gram value with the ledger scale
func (w Weight) StringFixed() string {
	return w.grams.StringFixed(WeightScale)
}

// MarshalJSON implements json.Marshaler
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.grams.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts both string and bare number forms; rejects negative values,
// maintaining the domain invariant that weights cannot be negative.
func (w *Weight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var d decimal.Decimal
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("invalid weight: %s", string(data))
		}
		if d.IsNegative() {
			return errors.New("weight cannot be negative")
		}
		w.grams = d
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid weight: %w", err)
	}
	if d.IsNegative() {
		return errors.New("weight cannot be negative")
	}
	w.grams = d
	return nil
}

// Value implements driver.Valuer for database storage
func (w Weight) Value() (driver.Value, error) {
	return w.grams.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (w *Weight) Scan(value any) error {
	if value == nil {
		w.grams = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		w.grams = decimal.NewFromFloat(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Weight", value)
	}

	val, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	w.grams = val
	return nil
}
