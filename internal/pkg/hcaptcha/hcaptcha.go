package hcaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
)

const DefaultVerifyURL = "https://hcaptcha.com/siteverify"

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks captcha tokens against the hCaptcha siteverify endpoint.
type Verifier struct {
	Secret    string
	VerifyURL string
	Client    *http.Client
}

// NewFromEnv returns a verifier for HCAPTCHA_SECRET, or nil when no secret is set.
func NewFromEnv() *Verifier {
	secret := env.GetEnv("HCAPTCHA_SECRET", "")
	if secret == "" {
		return nil
	}
	return &Verifier{
		Secret:    secret,
		VerifyURL: env.GetEnv("HCAPTCHA_VERIFY_URL", DefaultVerifyURL),
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("hCaptcha token is empty")
	}
	if v.Secret == "" {
		return false, fmt.Errorf("hCaptcha secret is not set")
	}

	formData := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}

	verifyURL := v.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request to hCaptcha API: %v", err)
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return false, fmt.Errorf("failed to decode hCaptcha API response: %v", err)
	}

	if !response.Success {
		errorMsg := "hCaptcha validation failed"
		if len(response.ErrorCodes) > 0 {
			errorMsg = errorMsg + ": " + strings.Join(response.ErrorCodes, ", ")
		}
		return false, fmt.Errorf("%s", errorMsg)
	}

	return true, nil
}
