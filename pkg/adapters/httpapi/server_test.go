package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/arbor/pkg/adapters/httpapi"
	"github.com/aretw0/arbor/pkg/flow"
)

type dispatcherFunc func(ctx context.Context, ev flow.Event) error

func (f dispatcherFunc) Dispatch(ctx context.Context, ev flow.Event) error { return f(ctx, ev) }

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_EventIngress(t *testing.T) {
	valid := `{"kind":"message","user_id":"u1","channel_id":"c1","text":"!start","private":true}`

	cases := []struct {
		name       string
		body       string
		dispatch   error
		wantStatus int
	}{
		{"accepted", valid, nil, http.StatusAccepted},
		{"invalid json", "{not json", nil, http.StatusBadRequest},
		{"missing kind", `{"user_id":"u1"}`, nil, http.StatusBadRequest},
		{"missing user", `{"kind":"message"}`, nil, http.StatusBadRequest},
		{"unprocessable event", valid, flow.ErrCannotProcess, http.StatusUnprocessableEntity},
		{"opaque dispatch error", valid, errors.New("boom"), http.StatusInternalServerError},
		{"corrupt session", valid, &flow.CorruptStateError{Token: "junk"}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *flow.Event
			srv := httpapi.NewServer(dispatcherFunc(func(_ context.Context, ev flow.Event) error {
				got = &ev
				return tc.dispatch
			}))
			rec := post(t, srv.Handler(), tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantStatus == http.StatusAccepted {
				assert.Equal(t, flow.KindMessage, got.Kind)
				assert.Equal(t, "u1", got.UserID)
				assert.True(t, got.Private)
			}
		})
	}
}

func TestServer_DispatchErrorWrappingErrCannotProcess(t *testing.T) {
	srv := httpapi.NewServer(dispatcherFunc(func(context.Context, flow.Event) error {
		return errors.Join(errors.New("unhandled command"), flow.ErrCannotProcess)
	}))
	rec := post(t, srv.Handler(), `{"kind":"message","user_id":"u1","text":"!x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	srv := httpapi.NewServer(dispatcherFunc(func(context.Context, flow.Event) error { return nil }))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := httpapi.NewServer(dispatcherFunc(func(context.Context, flow.Event) error { return nil }))
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
