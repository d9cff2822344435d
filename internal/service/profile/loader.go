package profile

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/kapu/attendee-profile-web/internal/service/session"
	"github.com/kapu/attendee-profile-web/pkg/errors"
	"go.uber.org/zap"
)

// FetchFailedMessage is the one message shown for every fetch failure. A wrong
// PIN and an unreachable API look the same to the visitor.
const FetchFailedMessage = "Failed to fetch profile. Please check your PIN and try again."

// AttendeeFetcher performs the single profile request.
type AttendeeFetcher interface {
	GetAttendee(ctx context.Context, shortID, pin string) (*domain.Profile, error)
}

// Loader owns the PIN gate: it loads the visitor's SessionState, applies the
// domain transitions and issues the fetch.
type Loader struct {
	fetcher      AttendeeFetcher
	store        session.Store
	logger       *zap.Logger
	fetchTimeout time.Duration
	nowFn        func() time.Time

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewLoader constructs a Loader. fetchTimeout bounds each fetch and also
// decides when a persisted Loading phase is considered abandoned.
func NewLoader(fetcher AttendeeFetcher, store session.Store, fetchTimeout time.Duration, logger *zap.Logger) *Loader {
	if fetchTimeout <= 0 {
		fetchTimeout = constants.APIConfig.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		fetcher:      fetcher,
		store:        store,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		nowFn:        time.Now,
		inflight:     make(map[string]struct{}),
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (l *Loader) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		l.nowFn = nowFn
	}
}

// State returns the visitor's state for shortID, or the initial state when
// nothing is stored yet.
func (l *Loader) State(ctx context.Context, sessionID, shortID string) (domain.SessionState, error) {
	state, ok, err := l.store.Load(ctx, sessionID, shortID)
	if err != nil {
		return domain.NewSessionState(shortID), err
	}
	if !ok {
		return domain.NewSessionState(shortID), nil
	}
	return domain.RecoverStale(state, l.nowFn(), l.fetchTimeout+constants.SessionConfig.LoadingGrace), nil
}

// SubmitPin validates pin and, when valid, fetches the profile. The returned
// state always carries the submitted PIN so the dialog can be re-rendered with
// it after a failure.
//
// Errors: *errors.ValidationError (bad length, or a fetch already in flight
// for this visitor), *errors.FetchError (any fetch failure),
// *errors.SessionError (store failure).
func (l *Loader) SubmitPin(ctx context.Context, sessionID, shortID, pin string) (domain.SessionState, error) {
	key := sessionID + ":" + shortID
	if !l.acquire(key) {
		state, err := l.State(ctx, sessionID, shortID)
		if err != nil {
			return domain.EditPin(state, pin), err
		}
		return domain.EditPin(state, pin), errors.NewValidationError("a profile request is already in progress", "submission", shortID)
	}
	defer l.release(key)

	state, err := l.State(ctx, sessionID, shortID)
	if err != nil {
		return domain.EditPin(state, pin), err
	}
	state = domain.EditPin(state, pin)

	if state.Phase == domain.PhaseLoaded {
		return state, nil
	}

	loading, err := domain.SubmitPin(state, l.nowFn())
	if err != nil {
		return state, err
	}

	if err := l.store.Save(ctx, sessionID, loading); err != nil {
		return state, err
	}

	return l.fetch(ctx, sessionID, loading)
}

// ContactCard returns the visitor's contact card. ok is false when no profile
// is loaded or it has no vcard.
func (l *Loader) ContactCard(ctx context.Context, sessionID, shortID string) (domain.ContactCard, bool, error) {
	state, err := l.State(ctx, sessionID, shortID)
	if err != nil {
		return domain.ContactCard{}, false, err
	}
	card, ok := domain.ExportContactCard(state.Profile)
	return card, ok, nil
}

func (l *Loader) fetch(ctx context.Context, sessionID string, state domain.SessionState) (domain.SessionState, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	profile, err := l.fetcher.GetAttendee(fetchCtx, state.ShortID, state.Pin)

	// the request context may already be done; the Loading mark still has to go
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RedisConfig.ReadyTimeout)
	defer saveCancel()

	if err != nil || profile == nil {
		failed := domain.FetchFailed(state)
		if saveErr := l.store.Save(saveCtx, sessionID, failed); saveErr != nil {
			l.logger.Error("Failed to persist session after fetch failure",
				zap.String("short_id", state.ShortID),
				zap.Error(saveErr),
			)
		}
		l.logger.Info("Profile fetch failed",
			zap.String("short_id", state.ShortID),
			zap.Error(err),
		)
		return failed, errors.NewFetchError(FetchFailedMessage, state.ShortID, err)
	}

	loaded := domain.FetchSucceeded(state, profile)
	if err := l.store.Save(saveCtx, sessionID, loaded); err != nil {
		return domain.FetchFailed(state), err
	}

	l.logger.Info("Profile loaded", zap.String("short_id", state.ShortID))
	return loaded, nil
}

func (l *Loader) acquire(key string) bool {
	l.inflightMu.Lock()
	defer l.inflightMu.Unlock()
	if _, busy := l.inflight[key]; busy {
		return false
	}
	l.inflight[key] = struct{}{}
	return true
}

func (l *Loader) release(key string) {
	l.inflightMu.Lock()
	defer l.inflightMu.Unlock()
	delete(l.inflight, key)
}
