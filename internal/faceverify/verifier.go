// Package faceverify defines the face verification boundary used by
// attendance punches and its implementations.
package faceverify

import "context"

// Result is the outcome of one verification. A face that does not match is a
// Result with Success false, not an error.
type Result struct {
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// Verifier checks a captured face image against the user's identity.
// Errors are reserved for transport or service failures, including timeouts.
type Verifier interface {
	Verify(ctx context.Context, image []byte, userID int) (Result, error)
}
