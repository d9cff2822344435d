package attendee

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kapu/attendee-profile-web/internal/util"
	"github.com/kapu/attendee-profile-web/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const profileJSON = `{
	"first_name": "Ana",
	"last_name": "García",
	"role": "CTO",
	"company": "Acme",
	"email": "ana@acme.io",
	"social_links": [{"name": "LinkedIn", "url": "https://www.linkedin.com/in/ana"}],
	"vcard": "BEGIN:VCARD\r\nEND:VCARD\r\n"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker *util.CircuitBreaker) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, breaker, zap.NewNop()), &calls
}

func TestGetAttendeeSuccess(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/attendee", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("short_id"))
		assert.Equal(t, "1234", r.URL.Query().Get("pin"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profileJSON))
	}, nil)

	profile, err := client.GetAttendee(context.Background(), "abc", "1234")

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, "Ana", profile.FirstName)
	assert.Equal(t, "García", profile.LastName)
	assert.Equal(t, "ana@acme.io", profile.Email)
	require.Len(t, profile.SocialLinks, 1)
	assert.Equal(t, "LinkedIn", profile.SocialLinks[0].Name)
	assert.Equal(t, "BEGIN:VCARD\r\nEND:VCARD\r\n", profile.VCard)
}

func TestGetAttendeeEscapesParameters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a&b=c d", r.URL.Query().Get("short_id"))
		assert.Equal(t, "1#2?", r.URL.Query().Get("pin"))
		_, _ = w.Write([]byte(profileJSON))
	}, nil)

	_, err := client.GetAttendee(context.Background(), "a&b=c d", "1#2?")
	require.NoError(t, err)
}

func TestGetAttendeeNon2xx(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong pin", http.StatusUnauthorized)
	}, nil)

	profile, err := client.GetAttendee(context.Background(), "abc", "0000")

	assert.Nil(t, profile)
	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no retries")
}

func TestGetAttendeeMalformedBodies(t *testing.T) {
	bodies := map[string]string{
		"not json":      "<html>oops</html>",
		"null":          "null",
		"array":         `[{"first_name":"Ana"}]`,
		"empty":         "",
		"truncated":     `{"first_name": "Ana"`,
		"trailing data": `{"first_name": "Ana"} {"first_name": "Bob"}`,
		"stray brace":   `{"first_name": "Ana"}}`,
		"stray bracket": `{"first_name": "Ana"}]`,
		"trailing text": `{"first_name": "Ana"} ok`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, nil)

			profile, err := client.GetAttendee(context.Background(), "abc", "1234")

			assert.Nil(t, profile)
			var apiErr *errors.APIError
			require.True(t, stderrors.As(err, &apiErr))
		})
	}
}

func TestGetAttendeeErrorsNeverContainPin(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil, zap.NewNop())

	_, err := client.GetAttendee(context.Background(), "abc", "9876")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "9876")
}

func TestGetAttendeeBreakerFailsFast(t *testing.T) {
	breaker := util.NewCircuitBreaker(2, time.Minute, zap.NewNop())
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, breaker)

	for i := 0; i < 2; i++ {
		_, err := client.GetAttendee(context.Background(), "abc", "1234")
		require.Error(t, err)
	}
	require.Equal(t, util.CircuitStateOpen, client.BreakerStatus().State)

	_, err := client.GetAttendee(context.Background(), "abc", "1234")

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestGetAttendeeClientErrorsDoNotTripBreaker(t *testing.T) {
	breaker := util.NewCircuitBreaker(1, time.Minute, zap.NewNop())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, breaker)

	for i := 0; i < 3; i++ {
		_, err := client.GetAttendee(context.Background(), "abc", "1234")
		require.Error(t, err)
	}

	assert.Equal(t, util.CircuitStateClosed, client.BreakerStatus().State)
}

func TestGetAttendeeHonoursContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetAttendee(ctx, "abc", "1234")
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	assert.NoError(t, client.Ping(context.Background()))

	down := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil, zap.NewNop())
	assert.Error(t, down.Ping(context.Background()))
}

func TestGetAttendeeAcceptsSurroundingWhitespace(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\n  " + profileJSON + "\n"))
	}, nil)

	profile, err := client.GetAttendee(context.Background(), "abc", "1234")

	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.FirstName)
}
