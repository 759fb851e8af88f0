// Package types provides common types used across Provenance.
package types

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// BasisPointDenominator is the divisor for basis-point arithmetic.
// 10,000 basis points = 100%.
const BasisPointDenominator = 10_000

// Amount represents an unsigned, arbitrary-precision monetary or usage
// amount in the smallest native unit of the active ledger (wei, lamports,
// yocto, ...). All arithmetic is integer-only, never floating point, so
// royalty computations are reproducible bit-for-bit.
//
// The zero value is a valid zero amount.
type Amount struct {
	v *big.Int
}

// NewAmount creates an Amount from a uint64.
func NewAmount(v uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(v)}
}

// ZeroAmount returns a zero Amount.
func ZeroAmount() Amount { return Amount{} }

// ParseAmount parses a base-10 string into an Amount.
// Negative values are rejected.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("amount: parse %q: empty string", s)
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("amount: parse %q: not a base-10 integer", s)
	}
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("amount: parse %q: negative", s)
	}

	return Amount{v: v}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
// Use for hardcoded amount values.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// big returns the underlying value, treating nil as zero.
func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Arithmetic operations

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{v: new(big.Int).Add(a.big(), other.big())}
}

// Sub returns a - other. Panics if the result would be negative;
// amounts are unsigned.
func (a Amount) Sub(other Amount) Amount {
	r := new(big.Int).Sub(a.big(), other.big())
	if r.Sign() < 0 {
		panic(fmt.Sprintf("amount: subtraction underflow: %s - %s", a, other))
	}
	return Amount{v: r}
}

// Mul returns a * qty.
func (a Amount) Mul(qty uint64) Amount {
	return Amount{v: new(big.Int).Mul(a.big(), new(big.Int).SetUint64(qty))}
}

// Div returns a / divisor using integer division with truncation toward
// zero. Panics on division by zero.
func (a Amount) Div(divisor uint64) Amount {
	if divisor == 0 {
		panic("amount: division by zero")
	}
	return Amount{v: new(big.Int).Quo(a.big(), new(big.Int).SetUint64(divisor))}
}

// ApplyBasisPoints returns a * bps / 10_000 with truncation toward zero.
// This is the canonical percentage operation for royalty math.
func (a Amount) ApplyBasisPoints(bps uint32) Amount {
	r := new(big.Int).Mul(a.big(), new(big.Int).SetUint64(uint64(bps)))
	r.Quo(r, big.NewInt(BasisPointDenominator))
	return Amount{v: r}
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// Equal returns true if both amounts are equal.
func (a Amount) Equal(other Amount) bool { return a.big().Cmp(other.big()) == 0 }

// LessThan returns true if a < other.
func (a Amount) LessThan(other Amount) bool { return a.big().Cmp(other.big()) < 0 }

// GreaterThan returns true if a > other.
func (a Amount) GreaterThan(other Amount) bool { return a.big().Cmp(other.big()) > 0 }

// Min returns the smaller of two amounts.
func (a Amount) Min(other Amount) Amount {
	if a.LessThan(other) {
		return a
	}
	return other
}

// Max returns the larger of two amounts.
func (a Amount) Max(other Amount) Amount {
	if a.GreaterThan(other) {
		return a
	}
	return other
}

// Clamp bounds a to [lo, hi]. A zero hi means no upper bound.
func (a Amount) Clamp(lo, hi Amount) Amount {
	if a.LessThan(lo) {
		return lo
	}
	if !hi.IsZero() && a.GreaterThan(hi) {
		return hi
	}
	return a
}

// Uint64 returns the amount as a uint64 and whether it fits.
func (a Amount) Uint64() (uint64, bool) {
	v := a.big()
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

// String returns the base-10 representation.
func (a Amount) String() string { return a.big().String() }

// MarshalText implements encoding.TextMarshaler.
// Amounts serialize as base-10 strings so they survive JSON number limits.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Amount{}
		return nil
	}

	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		if v == "" {
			*a = Amount{}
			return nil
		}
		return a.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*a = Amount{}
			return nil
		}
		return a.UnmarshalText(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("amount: cannot scan negative %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T into Amount", src)
	}
}

// SumAmounts calculates the sum of multiple amounts.
func SumAmounts(values ...Amount) Amount {
	result := ZeroAmount()
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
