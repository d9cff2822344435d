package domain

import (
	"time"
	"unicode/utf8"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/pkg/errors"
)

// Phase is the PIN gate state machine: AwaitingPin -> Loading -> (Loaded | AwaitingPin).
type Phase string

const (
	PhaseAwaitingPin Phase = "AWAITING_PIN"
	PhaseLoading     Phase = "LOADING"
	PhaseLoaded      Phase = "LOADED" // terminal
)

// String implements Stringer interface
func (p Phase) String() string {
	return string(p)
}

// SessionState is the per-visitor view state for one short_id. Values are
// treated as immutable: every transition below returns a new value.
//
// Pin is excluded from serialization so it never reaches a session store.
type SessionState struct {
	ShortID       string    `json:"short_id"`
	Pin           string    `json:"-"`
	Phase         Phase     `json:"phase"`
	PinDialogOpen bool      `json:"pin_dialog_open"`
	Loading       bool      `json:"loading"`
	LoadingSince  time.Time `json:"loading_since,omitempty"`
	Profile       *Profile  `json:"profile,omitempty"`
}

// NewSessionState returns the initial state: dialog open, not loading, no profile.
func NewSessionState(shortID string) SessionState {
	return SessionState{
		ShortID:       shortID,
		Phase:         PhaseAwaitingPin,
		PinDialogOpen: true,
	}
}

// HasProfile reports whether a profile has been loaded.
func (s SessionState) HasProfile() bool {
	return s.Profile != nil
}

// EditPin records the typed PIN verbatim. Length is enforced by SubmitPin, not
// here, so an over-long value is still rejected instead of silently truncated.
func EditPin(s SessionState, pin string) SessionState {
	next := s
	next.Pin = pin
	return next
}

// SubmitPin validates the current PIN and moves to Loading. On error the
// returned state equals s.
//
// A Loaded session is terminal: submitting again is a no-op with no error and
// the returned state keeps Phase=Loaded, so callers must check the phase
// before fetching.
func SubmitPin(s SessionState, now time.Time) (SessionState, error) {
	switch s.Phase {
	case PhaseLoaded:
		return s, nil
	case PhaseLoading:
		return s, errors.NewValidationError("a profile request is already in progress", "submission", s.ShortID)
	}

	if utf8.RuneCountInString(s.Pin) != constants.PinConfig.Length {
		return s, errors.NewValidationError("Please enter a 4-digit PIN.", "pin", utf8.RuneCountInString(s.Pin))
	}

	next := s
	next.Phase = PhaseLoading
	next.Loading = true
	next.LoadingSince = now
	return next, nil
}

// FetchSucceeded stores the profile exactly as received and closes the PIN dialog.
func FetchSucceeded(s SessionState, profile *Profile) SessionState {
	next := s
	next.Phase = PhaseLoaded
	next.Loading = false
	next.LoadingSince = time.Time{}
	next.PinDialogOpen = false
	next.Profile = profile
	return next
}

// FetchFailed returns to AwaitingPin with the dialog open. The PIN is kept so
// the user can correct and resubmit it.
func FetchFailed(s SessionState) SessionState {
	next := s
	next.Phase = PhaseAwaitingPin
	next.Loading = false
	next.LoadingSince = time.Time{}
	next.PinDialogOpen = true
	next.Profile = nil
	return next
}

// RecoverStale turns a Loading state older than maxAge back into AwaitingPin.
// A request that died mid-fetch would otherwise leave the session stuck.
func RecoverStale(s SessionState, now time.Time, maxAge time.Duration) SessionState {
	if s.Phase != PhaseLoading || s.LoadingSince.IsZero() {
		return s
	}
	if now.Sub(s.LoadingSince) <= maxAge {
		return s
	}
	return FetchFailed(s)
}
