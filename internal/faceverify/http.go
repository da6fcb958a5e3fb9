package faceverify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// HTTPVerifier calls a remote face matching service:
//
//	POST {baseURL}/verify {"userId": 1, "image": "<base64>"}
//	200 {"matched": true, "similarity": 0.93, "message": "..."}
type HTTPVerifier struct {
	baseURL   string
	apiKey    string
	threshold float64
	client    *http.Client
}

type verifyRequest struct {
	UserID int    `json:"userId"`
	Image  string `json:"image"`
}

type verifyResponse struct {
	Matched    bool    `json:"matched"`
	Similarity float64 `json:"similarity"`
	Message    string  `json:"message"`
}

func NewHTTPVerifier(baseURL, apiKey string, threshold float64, timeout time.Duration) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		threshold: threshold,
		client:    &http.Client{Timeout: timeout},
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, image []byte, userID int) (Result, error) {
	body, err := json.Marshal(verifyRequest{
		UserID: userID,
		Image:  base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	start := time.Now()
	resp, err := v.client.Do(req)
	if err != nil {
		log.Printf("[faceverify][http] userID=%d request failed after %s: %v", userID, time.Since(start).Truncate(time.Millisecond), err)
		return Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("face verifier status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("face verifier: decode response: %w", err)
	}
	log.Printf("[faceverify][http] userID=%d matched=%v similarity=%.3f took=%s",
		userID, out.Matched, out.Similarity, time.Since(start).Truncate(time.Millisecond))

	res := Result{
		Success:    out.Matched && out.Similarity >= v.threshold,
		Confidence: out.Similarity,
		Message:    out.Message,
	}
	if res.Message == "" {
		if res.Success {
			res.Message = "face verified"
		} else {
			res.Message = "face does not match"
		}
	}
	return res, nil
}
