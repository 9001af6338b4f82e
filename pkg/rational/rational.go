// Package rational provides exact rational numbers for time bases and frame rates.
package rational

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// Rational is an exact fraction Num/Den.
type Rational struct {
	Num int64
	Den int64
}

// TimeBaseQ is the container-level time base (microseconds).
var TimeBaseQ = Rational{Num: 1, Den: 1000000}

// New creates a Rational.
func New(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// Valid reports whether both terms are non-zero.
func (r Rational) Valid() bool {
	return r.Num != 0 && r.Den != 0
}

// Float64 returns the approximate value. Zero for an invalid denominator.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Reduce returns r in lowest terms with a positive denominator.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	g := gcd(abs(r.Num), abs(r.Den))
	if g == 0 {
		return r
	}
	num, den := r.Num/g, r.Den/g
	if den < 0 {
		num, den = -num, -den
	}
	return Rational{Num: num, Den: den}
}

// String formats r as "num/den".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// MulDiv returns a*b/c truncated toward zero. The product is computed in 128 bits
// so it never overflows before the division; a quotient outside int64 saturates.
func MulDiv(a, b, c int64) int64 {
	if c == 0 {
		return 0
	}
	neg := (a < 0) != (b < 0)
	if c < 0 {
		neg = !neg
	}
	hi, lo := bits.Mul64(uabs(a), uabs(b))
	uc := uabs(c)
	if hi < uc {
		q, _ := bits.Div64(hi, lo, uc)
		if q <= math.MaxInt64 {
			if neg {
				return -int64(q)
			}
			return int64(q)
		}
	}
	// Quotient does not fit in 64 bits.
	p := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	p.Quo(p, big.NewInt(c))
	if p.IsInt64() {
		return p.Int64()
	}
	if p.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// MulDivCeil returns a*b/c rounded up for non-negative a and b and positive c.
func MulDivCeil(a, b, c int64) int64 {
	if c <= 0 || a < 0 || b < 0 {
		return MulDiv(a, b, c)
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi < uint64(c) {
		q, r := bits.Div64(hi, lo, uint64(c))
		if r != 0 {
			q++
		}
		if q <= math.MaxInt64 {
			return int64(q)
		}
		return math.MaxInt64
	}
	return MulDiv(a, b, c)
}

// MulDivRound returns a*b/c rounded to the nearest integer, halves away from zero.
func MulDivRound(a, b, c int64) int64 {
	if c == 0 {
		return 0
	}
	p := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	den := big.NewInt(c)
	q, r := new(big.Int).QuoRem(p, den, new(big.Int))
	r.Abs(r).Lsh(r, 1)
	if r.Cmp(den.Abs(den)) >= 0 {
		if p.Sign()*int(c>>63|1) < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if q.IsInt64() {
		return q.Int64()
	}
	if q.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// Rescale converts v from time base from to time base to, truncating.
func Rescale(v int64, from, to Rational) int64 {
	return MulDiv(v, from.Num*to.Den, from.Den*to.Num)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func uabs(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
