package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/types"
)

func TestUpdateCardSendsPartialPayload(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/cards/c1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &gotBody))
		_ = json.NewEncoder(w).Encode(models.Card{ID: "c1", ListID: "l2", Position: 4})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", WithToken("secret"))
	card, err := c.UpdateCard(context.Background(), "c1", models.CardPatch{
		Position: models.Some(4.0),
		ListID:   models.Some[types.ListID]("l2"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"position": 4.0, "list_id": "l2"}, gotBody)
	assert.Equal(t, 4.0, card.Position)
}

func TestCreateCardNormalizesCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"c9","list_id":"l1","title":"New","position":3}`)
	}))
	defer srv.Close()

	card, err := NewHTTPClient(srv.URL).CreateCard(context.Background(), CreateCardRequest{ListID: "l1", Title: "New"})
	require.NoError(t, err)
	assert.NotNil(t, card.Checklists)
	assert.NotNil(t, card.Activity)
	assert.NotNil(t, card.Assignees)
}

func TestDeleteAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, NewHTTPClient(srv.URL).DeleteChecklist(context.Background(), "k1"))
}

func TestErrorStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrInvalid},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":"nope"}`)
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL).GetBoard(context.Background(), "p1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var pe *Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "nope", pe.Message)
			assert.Equal(t, tt.status, pe.Status)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).GetBoard(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestContextDeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(srv.URL).GetBoard(ctx, "p1")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, ErrUnavailable)
}
