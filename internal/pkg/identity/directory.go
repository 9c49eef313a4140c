package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrUserNotFound = errors.New("identity user not found")

// User is the public profile of an identity-store user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Directory looks up one user at a time.
type Directory interface {
	LookupUser(ctx context.Context, id string) (*User, error)
}

// BatchDirectory is implemented by directories that resolve many users per call.
type BatchDirectory interface {
	Directory
	LookupUsers(ctx context.Context, ids []string) (map[string]User, error)
}

// HTTPDirectory reads users from the auth service admin API.
type HTTPDirectory struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewHTTPDirectory(baseURL, serviceKey string, timeout time.Duration) *HTTPDirectory {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPDirectory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// LookupUser fetches GET {base}/auth/v1/admin/users/{id}.
func (d *HTTPDirectory) LookupUser(ctx context.Context, id string) (*User, error) {
	endpoint := d.baseURL + "/auth/v1/admin/users/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", d.serviceKey)
	req.Header.Set("Authorization", "Bearer "+d.serviceKey)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity lookup %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity lookup %s: unexpected status %d", id, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("identity lookup %s: decode: %w", id, err)
	}
	if user.ID == "" {
		user.ID = id
	}
	return &user, nil
}
