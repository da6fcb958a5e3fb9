package faceverify

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const defaultSuccessRate = 0.9

// Simulated stands in for a biometric service: it succeeds with the
// configured probability and draws a plausible confidence.
type Simulated struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	successRate float64
}

func NewSimulated(seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		rnd:         rand.New(rand.NewSource(seed)),
		successRate: defaultSuccessRate,
	}
}

// WithSuccessRate overrides the success probability (0..1).
func (s *Simulated) WithSuccessRate(p float64) *Simulated {
	s.successRate = p
	return s
}

func (s *Simulated) Verify(ctx context.Context, image []byte, userID int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(image) == 0 {
		return Result{Success: false, Confidence: 0, Message: "no face detected"}, nil
	}

	s.mu.Lock()
	draw := s.rnd.Float64()
	jitter := s.rnd.Float64()
	s.mu.Unlock()

	if draw < s.successRate {
		return Result{
			Success:    true,
			Confidence: 0.85 + jitter*0.1,
			Message:    "face verified",
		}, nil
	}
	return Result{
		Success:    false,
		Confidence: 0.3 + jitter*0.3,
		Message:    "face does not match",
	}, nil
}
