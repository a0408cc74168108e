// Package fraction implements exact, non-negative rational arithmetic.
//
// Election seat apportionment depends on reproducing the same comparisons
// and tie detections every time, regardless of rounding order. A
// floating-point quotient cannot make that promise; a GCD-normalized
// big.Int ratio can, so every quota, remainder, and votes-per-seat value
// in this codebase flows through Fraction rather than float64.
package fraction

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Fraction is an exact, always-reduced, non-negative rational number.
// The zero value is not valid; use Zero or New to construct one.
type Fraction struct {
	num *big.Int
	den *big.Int
}

// Zero is the additive identity.
var Zero = Fraction{num: big.NewInt(0), den: big.NewInt(1)}

// New builds a Fraction equal to num/den. It panics if den is zero or if
// either num or den is negative; this type models quantities (vote counts,
// seat counts, quotas) that are never negative in this domain.
func New(num, den int64) Fraction {
	if den == 0 {
		panic("fraction: zero denominator")
	}
	if num < 0 || den < 0 {
		panic("fraction: negative operand")
	}
	return normalize(big.NewInt(num), big.NewInt(den))
}

// FromInt builds a whole-number Fraction.
func FromInt(n int64) Fraction {
	return New(n, 1)
}

func normalize(num, den *big.Int) Fraction {
	if num.Sign() == 0 {
		return Fraction{num: big.NewInt(0), den: big.NewInt(1)}
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), new(big.Int).Abs(den))
	n := new(big.Int).Div(num, g)
	d := new(big.Int).Div(den, g)
	return Fraction{num: n, den: d}
}

// Add returns f + other.
func (f Fraction) Add(other Fraction) Fraction {
	n := new(big.Int).Add(
		new(big.Int).Mul(f.num, other.den),
		new(big.Int).Mul(other.num, f.den),
	)
	d := new(big.Int).Mul(f.den, other.den)
	return normalize(n, d)
}

// Sub returns f - other. Panics if the result would be negative, since
// Fraction only models non-negative quantities.
func (f Fraction) Sub(other Fraction) Fraction {
	n := new(big.Int).Sub(
		new(big.Int).Mul(f.num, other.den),
		new(big.Int).Mul(other.num, f.den),
	)
	if n.Sign() < 0 {
		panic("fraction: subtraction underflow")
	}
	d := new(big.Int).Mul(f.den, other.den)
	return normalize(n, d)
}

// Mul returns f * other.
func (f Fraction) Mul(other Fraction) Fraction {
	n := new(big.Int).Mul(f.num, other.num)
	d := new(big.Int).Mul(f.den, other.den)
	return normalize(n, d)
}

// Div returns f / other. Panics if other is zero.
func (f Fraction) Div(other Fraction) Fraction {
	if other.num.Sign() == 0 {
		panic("fraction: division by zero")
	}
	n := new(big.Int).Mul(f.num, other.den)
	d := new(big.Int).Mul(f.den, other.num)
	return normalize(n, d)
}

// Cmp returns -1, 0, or 1 as f is less than, equal to, or greater than other.
func (f Fraction) Cmp(other Fraction) int {
	lhs := new(big.Int).Mul(f.num, other.den)
	rhs := new(big.Int).Mul(other.num, f.den)
	return lhs.Cmp(rhs)
}

// Equal reports mathematical equality (1/2 == 2/4), not representational
// equality.
func (f Fraction) Equal(other Fraction) bool {
	return f.Cmp(other) == 0
}

// GreaterThan reports whether f > other.
func (f Fraction) GreaterThan(other Fraction) bool {
	return f.Cmp(other) > 0
}

// GreaterThanOrEqual reports whether f >= other.
func (f Fraction) GreaterThanOrEqual(other Fraction) bool {
	return f.Cmp(other) >= 0
}

// LessThan reports whether f < other.
func (f Fraction) LessThan(other Fraction) bool {
	return f.Cmp(other) < 0
}

// LessThanOrEqual reports whether f <= other.
func (f Fraction) LessThanOrEqual(other Fraction) bool {
	return f.Cmp(other) <= 0
}

// IsZero reports whether f is exactly zero.
func (f Fraction) IsZero() bool {
	return f.num.Sign() == 0
}

// IntegerPart returns floor(f) as an int64. Panics if the result would not
// fit in an int64, which cannot happen for the vote/seat magnitudes this
// domain deals in.
func (f Fraction) IntegerPart() int64 {
	q := new(big.Int).Div(f.num, f.den)
	if !q.IsInt64() {
		panic("fraction: integer part overflows int64")
	}
	return q.Int64()
}

// IsWhole reports whether f has no fractional remainder.
func (f Fraction) IsWhole() bool {
	return f.den.Cmp(big.NewInt(1)) == 0
}

// String renders f as a mixed number ("3", "3 1/2", "1/2") matching how
// the statutory text presents vote-per-seat and quota values.
func (f Fraction) String() string {
	whole := new(big.Int).Div(f.num, f.den)
	rem := new(big.Int).Mod(f.num, f.den)
	if rem.Sign() == 0 {
		return whole.String()
	}
	if whole.Sign() == 0 {
		return fmt.Sprintf("%s/%s", rem.String(), f.den.String())
	}
	return fmt.Sprintf("%s %s/%s", whole.String(), rem.String(), f.den.String())
}

// Num returns the reduced numerator.
func (f Fraction) Num() *big.Int {
	return new(big.Int).Set(f.num)
}

// Den returns the reduced denominator.
func (f Fraction) Den() *big.Int {
	return new(big.Int).Set(f.den)
}

// jsonFraction mirrors Fraction's reduced numerator/denominator as plain
// strings, since Fraction's fields are unexported and big.Int's own JSON
// form loses precision for values outside the float64 range only when
// decoded into a float — strings avoid that trap entirely.
type jsonFraction struct {
	Num string `json:"num"`
	Den string `json:"den"`
}

// MarshalJSON renders f as its reduced numerator/denominator pair, so a
// persisted or reported Fraction round-trips exactly rather than through
// a lossy floating-point intermediate.
func (f Fraction) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonFraction{Num: f.num.String(), Den: f.den.String()})
}

// UnmarshalJSON reads back a Fraction written by MarshalJSON.
func (f *Fraction) UnmarshalJSON(data []byte) error {
	var jf jsonFraction
	if err := json.Unmarshal(data, &jf); err != nil {
		return err
	}
	num, ok := new(big.Int).SetString(jf.Num, 10)
	if !ok {
		return fmt.Errorf("fraction: invalid numerator %q", jf.Num)
	}
	den, ok := new(big.Int).SetString(jf.Den, 10)
	if !ok {
		return fmt.Errorf("fraction: invalid denominator %q", jf.Den)
	}
	*f = normalize(num, den)
	return nil
}
