package utils

import (
	"math"
)

type Fl = float32

// Inf is used for unconstrained available sizes.
var Inf = Fl(math.Inf(1))

func MinInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func MaxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func MinF(x, y Fl) Fl {
	if x < y {
		return x
	}
	return y
}

func MaxF(x, y Fl) Fl {
	if x > y {
		return x
	}
	return y
}

func Maxs(values ...Fl) Fl {
	max := values[0]
	for _, w := range values {
		if w > max {
			max = w
		}
	}
	return max
}

func Mins(values ...Fl) Fl {
	min := values[0]
	for _, w := range values {
		if w < min {
			min = w
		}
	}
	return min
}

// Clamp applies [max] then [min] to [v], so that min wins
// when the two constraints conflict.
func Clamp(v, min, max Fl) Fl {
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}

// IsFinite returns false for NaN and infinities.
func IsFinite(v Fl) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// Finite returns [v], or 0 if [v] is not finite. The boolean
// reports if [v] was fixed.
func Finite(v Fl) (Fl, bool) {
	if IsFinite(v) {
		return v, false
	}
	return 0, true
}

func Floor(x Fl) Fl {
	return Fl(math.Floor(float64(x)))
}

// RoundPrec rounds f with n digits precision
func RoundPrec(f Fl, n int) Fl {
	n10 := math.Pow10(n)
	return Fl(math.Round(float64(f)*n10) / n10)
}

// Round rounds f with 6 digits precision
func Round(f Fl) Fl {
	return RoundPrec(f, 6)
}

// Hypot returns SQRT(a^2 + b^2)
func Hypot(a, b Fl) Fl {
	return Fl(math.Hypot(float64(a), float64(b)))
}

func Abs(x Fl) Fl {
	if x < 0 {
		return -x
	}
	return x
}
