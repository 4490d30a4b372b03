package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

var (
	// ErrUnauthorized is returned when no token is held or the server
	// rejected the one presented; callers should prompt for authentication.
	ErrUnauthorized = errors.New("authentication required")
	// ErrNotFound maps 404 responses; callers render an empty state.
	ErrNotFound = errors.New("not found")
)

// AuthContext carries the caller's identity explicitly instead of reading it
// from ambient session state. It is set on login and cleared on logout.
type AuthContext struct {
	Token  string
	UserID int64
	Role   domain.Role
}

// APIError is a server-side rejection with the extracted messages.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("request rejected with status %d", e.StatusCode)
	}
	return strings.Join(e.Messages, "; ")
}

// Client is a thin REST client for the shelter API.
type Client struct {
	baseURL    string
	auth       AuthContext
	httpClient *http.Client
}

func NewClient(baseURL string, auth AuthContext) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Auth returns the identity this client acts as.
func (c *Client) Auth() AuthContext { return c.auth }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body any, out any) error {
	if c.auth.Token == "" {
		return ErrUnauthorized
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.auth.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, Messages: ExtractErrorMessages(raw)}
	}

	env := envelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Messages: []string{env.Message}}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("malformed response data: %w", err)
		}
	}

	return nil
}

func (c *Client) GetAnimals(ctx context.Context) ([]*domain.Animal, error) {
	animals := []*domain.Animal{}
	if err := c.do(ctx, http.MethodGet, "/animals", nil, nil, &animals); err != nil {
		return nil, err
	}
	return animals, nil
}

func (c *Client) GetAnimal(ctx context.Context, animalID int64) (*domain.Animal, error) {
	animal := &domain.Animal{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/animals/%d", animalID), nil, nil, animal); err != nil {
		return nil, err
	}
	return animal, nil
}

func (c *Client) GetAnimalReservations(ctx context.Context, animalID int64) ([]*domain.Reservation, error) {
	reservations := []*domain.Reservation{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reservations/animal/%d", animalID), nil, nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *Client) GetOwnReservations(ctx context.Context) ([]*domain.Reservation, error) {
	reservations := []*domain.Reservation{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reservations/user/%d", c.auth.UserID), nil, nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CreateReservationRequest is the wire form of one merged range: the date as
// yyyy-MM-dd and the times as HH:mm:ss.
type CreateReservationRequest struct {
	UserID          int64  `json:"userID"`
	AnimalID        int64  `json:"animalID"`
	ReservationDate string `json:"reservationDate"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
}

// CreateReservation books one merged range. The idempotency key makes a
// retried submission land on the already-created reservation instead of
// producing a duplicate.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest, idempotencyKey string) (*domain.Reservation, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	res := &domain.Reservation{}
	if err := c.do(ctx, http.MethodPost, "/reservations", header, req, res); err != nil {
		return nil, err
	}
	return res, nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// CancelReservation issues the status patch that ends a reservation's life.
func (c *Client) CancelReservation(ctx context.Context, reservationID int64) error {
	doc := []patchOp{{Op: "replace", Path: "/status", Value: int(domain.StatusCanceled)}}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/reservations/%d", reservationID), nil, doc, nil)
}

// metadata keys of structured error bodies that carry no message text.
var errorMetadataKeys = map[string]struct{}{
	"traceId":  {},
	"title":    {},
	"status":   {},
	"type":     {},
	"instance": {},
}

// ExtractErrorMessages walks an error response body recursively, skipping
// metadata keys and collecting every leaf string as a message. Unparseable
// bodies yield no messages.
func ExtractErrorMessages(body []byte) []string {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	messages := make([]string, 0, 4)
	collectMessages(parsed, &messages)
	return messages
}

func collectMessages(node any, out *[]string) {
	switch v := node.(type) {
	case string:
		if v != "" {
			*out = append(*out, v)
		}
	case []any:
		for _, item := range v {
			collectMessages(item, out)
		}
	case map[string]any:
		// walk keys in a stable order so messages come out deterministic
		keys := make([]string, 0, len(v))
		for key := range v {
			if _, skip := errorMetadataKeys[key]; skip {
				continue
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectMessages(v[key], out)
		}
	}
}
