package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialJitter_Bounds(t *testing.T) {
	base := 100 * time.Millisecond
	max := 2 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{10, 2 * time.Second},
		{200, 2 * time.Second},
	}

	for _, tt := range tests {
		for range 50 {
			got := ExponentialJitter(base, max, tt.attempt)
			lo := tt.want - tt.want/5
			hi := tt.want + tt.want/5
			assert.GreaterOrEqual(t, got, lo, "attempt %d", tt.attempt)
			assert.LessOrEqual(t, got, hi, "attempt %d", tt.attempt)
		}
	}
}

func TestExponentialJitter_Tiny(t *testing.T) {
	assert.Equal(t, time.Duration(0), ExponentialJitter(0, time.Second, 3))
	assert.Equal(t, time.Duration(1), ExponentialJitter(1, time.Second, 1))
}
