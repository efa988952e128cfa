package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// ExponentialJitter doubles base per attempt, caps it at max and spreads the
// result by +/- 20%.
func ExponentialJitter(base, max time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	mul := math.Pow(2, float64(attempt-1))
	d := time.Duration(math.Min(float64(base)*mul, float64(max)))
	if d <= 0 {
		return 0
	}

	j := time.Duration(float64(d) * 0.2)
	if j <= 0 {
		return d
	}
	return d - j + time.Duration(rand.Int64N(int64(2*j)+1))
}
