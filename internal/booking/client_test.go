package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

func TestClientWithoutTokenMakesNoRequest(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, AuthContext{UserID: 7, Role: domain.RoleVolunteer})

	_, err := c.GetAnimals(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, hits.Load())
}

func TestClientMapsAuthAndNotFound(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, AuthContext{Token: "t", UserID: 7})

	_, err := c.GetAnimals(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusForbidden
	_, err = c.GetAnimals(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusNotFound
	_, err = c.GetAnimal(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientSendsBearerAndIdempotencyKey(t *testing.T) {
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"id":1}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, AuthContext{Token: "sekrit", UserID: 7})

	res, err := c.CreateReservation(context.Background(), CreateReservationRequest{UserID: 7, AnimalID: 1}, "key-123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, "Bearer sekrit", gotAuth)
	assert.Equal(t, "key-123", gotKey)
}

func TestClientUnwrapsEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"the animal is already reserved for part of this time range","data":null}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, AuthContext{Token: "t", UserID: 7})

	_, err := c.CreateReservation(context.Background(), CreateReservationRequest{}, "")
	require.Error(t, err)

	apiErr := &APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "already reserved")
}

func TestExtractErrorMessagesSkipsMetadata(t *testing.T) {
	body := []byte(`{
		"traceId": "00-abc-00",
		"title": "One or more validation errors occurred.",
		"status": 400,
		"errors": {
			"StartTime": ["StartTime must precede EndTime"],
			"AnimalId": ["AnimalId is required", "AnimalId must be positive"]
		}
	}`)

	msgs := ExtractErrorMessages(body)
	assert.Equal(t, []string{
		"AnimalId is required",
		"AnimalId must be positive",
		"StartTime must precede EndTime",
	}, msgs)
}

func TestExtractErrorMessagesPlainArrayAndGarbage(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ExtractErrorMessages([]byte(`["a","b"]`)))
	assert.Empty(t, ExtractErrorMessages([]byte(`not json at all`)))
}
