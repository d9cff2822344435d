package domain

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/kapu/attendee-profile-web/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNewSessionState(t *testing.T) {
	state := NewSessionState("abc")

	assert.Equal(t, "abc", state.ShortID)
	assert.Equal(t, PhaseAwaitingPin, state.Phase)
	assert.True(t, state.PinDialogOpen)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Pin)
	assert.False(t, state.HasProfile())
}

func TestEditPinKeepsValueVerbatim(t *testing.T) {
	state := NewSessionState("abc")

	edited := EditPin(state, "12345")

	assert.Equal(t, "12345", edited.Pin)
	assert.Empty(t, state.Pin, "original state must not change")
}

func TestSubmitPinRejectsWrongLength(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"too short": "123",
		"too long":  "12345",
	}

	for name, pin := range cases {
		t.Run(name, func(t *testing.T) {
			state := EditPin(NewSessionState("abc"), pin)

			next, err := SubmitPin(state, testNow)

			require.Error(t, err)
			var validationErr *errors.ValidationError
			require.True(t, stderrors.As(err, &validationErr))
			assert.Equal(t, "pin", validationErr.Field)
			assert.Equal(t, "Please enter a 4-digit PIN.", validationErr.Message)
			assert.Equal(t, state, next)
		})
	}
}

func TestSubmitPinCountsRunesNotBytes(t *testing.T) {
	state := EditPin(NewSessionState("abc"), "ñ1é2")

	next, err := SubmitPin(state, testNow)

	require.NoError(t, err)
	assert.Equal(t, PhaseLoading, next.Phase)
}

func TestSubmitPinStartsLoading(t *testing.T) {
	state := EditPin(NewSessionState("abc"), "1234")

	next, err := SubmitPin(state, testNow)

	require.NoError(t, err)
	assert.Equal(t, PhaseLoading, next.Phase)
	assert.True(t, next.Loading)
	assert.True(t, next.PinDialogOpen)
	assert.Equal(t, testNow, next.LoadingSince)
	assert.Equal(t, "1234", next.Pin)
}

func TestSubmitPinWhileLoading(t *testing.T) {
	loading, err := SubmitPin(EditPin(NewSessionState("abc"), "1234"), testNow)
	require.NoError(t, err)

	again, err := SubmitPin(loading, testNow.Add(time.Second))

	var validationErr *errors.ValidationError
	require.True(t, stderrors.As(err, &validationErr))
	assert.Equal(t, "submission", validationErr.Field)
	assert.Equal(t, loading, again)
}

func TestSubmitPinOnLoadedIsNoop(t *testing.T) {
	loading, err := SubmitPin(EditPin(NewSessionState("abc"), "1234"), testNow)
	require.NoError(t, err)
	loaded := FetchSucceeded(loading, &Profile{FirstName: "Ana"})

	next, err := SubmitPin(EditPin(loaded, "9"), testNow)

	require.NoError(t, err)
	assert.Equal(t, PhaseLoaded, next.Phase)
	assert.False(t, next.Loading)
	assert.Same(t, loaded.Profile, next.Profile)
}

func TestFetchSucceeded(t *testing.T) {
	loading, err := SubmitPin(EditPin(NewSessionState("abc"), "1234"), testNow)
	require.NoError(t, err)
	profile := &Profile{FirstName: "Ana", LastName: "García"}

	loaded := FetchSucceeded(loading, profile)

	assert.Equal(t, PhaseLoaded, loaded.Phase)
	assert.False(t, loaded.Loading)
	assert.False(t, loaded.PinDialogOpen)
	assert.True(t, loaded.LoadingSince.IsZero())
	assert.Same(t, profile, loaded.Profile)
}

func TestFetchFailedKeepsPin(t *testing.T) {
	loading, err := SubmitPin(EditPin(NewSessionState("abc"), "1234"), testNow)
	require.NoError(t, err)

	failed := FetchFailed(loading)

	assert.Equal(t, PhaseAwaitingPin, failed.Phase)
	assert.False(t, failed.Loading)
	assert.True(t, failed.PinDialogOpen)
	assert.Equal(t, "1234", failed.Pin)
	assert.Nil(t, failed.Profile)

	// the user can resubmit after a failure
	again, err := SubmitPin(failed, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, PhaseLoading, again.Phase)
}

func TestRecoverStale(t *testing.T) {
	loading, err := SubmitPin(EditPin(NewSessionState("abc"), "1234"), testNow)
	require.NoError(t, err)

	fresh := RecoverStale(loading, testNow.Add(10*time.Second), 15*time.Second)
	assert.Equal(t, PhaseLoading, fresh.Phase)

	stale := RecoverStale(loading, testNow.Add(16*time.Second), 15*time.Second)
	assert.Equal(t, PhaseAwaitingPin, stale.Phase)
	assert.True(t, stale.PinDialogOpen)
	assert.False(t, stale.Loading)

	idle := NewSessionState("abc")
	assert.Equal(t, idle, RecoverStale(idle, testNow.Add(time.Hour), time.Second))
}
