package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/attendee-profile-web/internal/adapter"
	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/kapu/attendee-profile-web/internal/i18n"
	"github.com/kapu/attendee-profile-web/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ProfileService is the part of the profile loader the pages depend on.
type ProfileService interface {
	State(ctx context.Context, sessionID, shortID string) (domain.SessionState, error)
	SubmitPin(ctx context.Context, sessionID, shortID, pin string) (domain.SessionState, error)
	ContactCard(ctx context.Context, sessionID, shortID string) (domain.ContactCard, bool, error)
}

// CookieConfig controls the visitor session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// PageHandlers serves the profile page, the PIN form and the contact card.
type PageHandlers struct {
	profiles    ProfileService
	formatter   *adapter.ProfileFormatter
	cookie      CookieConfig
	defaultLang language.Tag
	logger      *zap.Logger
}

// NewPageHandlers builds the page handlers.
func NewPageHandlers(profiles ProfileService, formatter *adapter.ProfileFormatter, cookie CookieConfig, defaultLang language.Tag, logger *zap.Logger) *PageHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cookie.Name == "" {
		cookie.Name = constants.SessionConfig.CookieName
	}
	if cookie.TTL <= 0 {
		cookie.TTL = constants.SessionConfig.TTL
	}
	return &PageHandlers{
		profiles:    profiles,
		formatter:   formatter,
		cookie:      cookie,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

func (h *PageHandlers) handlePage(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	shortID := strings.TrimSpace(r.URL.Query().Get("short_id"))
	if shortID == "" {
		h.renderError(w, loc, http.StatusBadRequest, "error.missing_short_id")
		return
	}

	sid := h.sessionID(w, r)
	state, err := h.profiles.State(r.Context(), sid, shortID)
	if err != nil {
		h.logger.Error("Failed to load session", zap.String("short_id", shortID), zap.Error(err))
		h.renderError(w, loc, http.StatusInternalServerError, "error.internal")
		return
	}

	h.renderPage(w, http.StatusOK, h.formatter.BuildPage(state, nil, loc))
}

func (h *PageHandlers) handleSubmitPin(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderError(w, loc, http.StatusBadRequest, "error.missing_short_id")
		return
	}

	shortID := strings.TrimSpace(r.PostForm.Get("short_id"))
	if shortID == "" {
		h.renderError(w, loc, http.StatusBadRequest, "error.missing_short_id")
		return
	}
	pin := r.PostForm.Get("pin")

	sid := h.sessionID(w, r)
	state, err := h.profiles.SubmitPin(r.Context(), sid, shortID, pin)
	if err == nil {
		http.Redirect(w, r, pagePath(shortID), http.StatusSeeOther)
		return
	}

	notice, ok := noticeFor(err, loc)
	if !ok {
		h.logger.Error("PIN submission failed", zap.String("short_id", shortID), zap.Error(err))
		h.renderError(w, loc, http.StatusInternalServerError, "error.internal")
		return
	}

	h.renderPage(w, http.StatusOK, h.formatter.BuildPage(state, notice, loc))
}

func (h *PageHandlers) handleContactCard(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	shortID := strings.TrimSpace(r.URL.Query().Get("short_id"))
	if shortID == "" {
		h.renderError(w, loc, http.StatusBadRequest, "error.missing_short_id")
		return
	}

	sid := h.sessionID(w, r)
	card, ok, err := h.profiles.ContactCard(r.Context(), sid, shortID)
	if err != nil {
		h.logger.Error("Failed to load contact card", zap.String("short_id", shortID), zap.Error(err))
		h.renderError(w, loc, http.StatusInternalServerError, "error.internal")
		return
	}
	if !ok {
		http.Redirect(w, r, pagePath(shortID), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", card.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": card.Filename,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(card.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(card.Content)
}

// noticeFor maps a recoverable submission error to the notice shown on the
// re-rendered page. ok is false for anything else.
func noticeFor(err error, loc *i18n.Localizer) (*adapter.Notice, bool) {
	var validationErr *errors.ValidationError
	if stderrors.As(err, &validationErr) {
		if validationErr.Field == "submission" {
			return &adapter.Notice{
				Title:   loc.T("notice.error_title"),
				Message: loc.T("notice.in_flight"),
				Status:  "info",
			}, true
		}
		return &adapter.Notice{
			Title:   loc.T("notice.invalid_pin_title"),
			Message: loc.T("notice.invalid_pin"),
			Status:  "error",
		}, true
	}

	var fetchErr *errors.FetchError
	if stderrors.As(err, &fetchErr) {
		return &adapter.Notice{
			Title:   loc.T("notice.error_title"),
			Message: loc.T("notice.fetch_failed"),
			Status:  "error",
		}, true
	}

	return nil, false
}

func (h *PageHandlers) localizer(w http.ResponseWriter, r *http.Request) *i18n.Localizer {
	tag, persist := i18n.ResolveTag(r, h.defaultLang)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.NewLocalizer(tag)
}

// sessionID returns the visitor's session id, issuing a new cookie when the
// request has none or carries a malformed one.
func (h *PageHandlers) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *PageHandlers) renderPage(w http.ResponseWriter, status int, view adapter.PageView) {
	var buf bytes.Buffer
	if err := adapter.RenderPage(&buf, view); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (h *PageHandlers) renderError(w http.ResponseWriter, loc *i18n.Localizer, status int, messageKey string) {
	var buf bytes.Buffer
	view := adapter.ErrorView{
		Lang:    loc.Lang(),
		Title:   http.StatusText(status),
		Message: loc.T(messageKey),
	}
	if err := adapter.RenderError(&buf, view); err != nil {
		h.logger.Error("Failed to render error page", zap.Error(err))
		http.Error(w, view.Message, status)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func pagePath(shortID string) string {
	return PathPage + "?" + url.Values{"short_id": {shortID}}.Encode()
}
