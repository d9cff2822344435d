package attendee

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/kapu/attendee-profile-web/internal/util"
	"github.com/kapu/attendee-profile-web/pkg/errors"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of an attendee response is read.
const maxBodyBytes = 1 << 20

// Client calls the remote attendee API. Each GetAttendee makes at most one
// HTTP request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

// NewClient builds a client for baseURL. breaker may be nil.
func NewClient(baseURL string, timeout time.Duration, breaker *util.CircuitBreaker, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = constants.APIConfig.Timeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		logger:  logger,
	}
}

// GetAttendee fetches the profile for shortID guarded by pin. Any failure is
// returned as *errors.APIError.
func (c *Client) GetAttendee(ctx context.Context, shortID, pin string) (*domain.Profile, error) {
	if !c.breaker.CanExecute() {
		c.logger.Warn("Attendee API circuit open, failing fast", zap.String("short_id", shortID))
		return nil, errors.NewAPIError("circuit breaker open", http.StatusServiceUnavailable, map[string]any{
			"short_id": shortID,
		})
	}

	params := url.Values{}
	params.Set("short_id", shortID)
	params.Set("pin", pin)

	var profile domain.Profile
	err := c.doRequest(ctx, http.MethodGet, constants.APIConfig.AttendeePath, params, &profile)
	if err != nil {
		c.recordOutcome(err)
		c.logger.Warn("Failed to fetch attendee", zap.String("short_id", shortID), zap.Error(err))
		return nil, err
	}

	c.breaker.RecordSuccess()
	return &profile, nil
}

// Ping reports whether the API host answers at all. Any HTTP response counts
// as reachable; only transport errors fail.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("attendee api unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

// BreakerStatus exposes the circuit state for health reporting.
func (c *Client) BreakerStatus() util.CircuitBreakerStatus {
	if c.breaker == nil {
		return util.CircuitBreakerStatus{State: util.CircuitStateClosed}
	}
	return c.breaker.GetStatus()
}

// recordOutcome counts transport failures, 5xx and malformed bodies toward the
// breaker. A 4xx is a wrong PIN or unknown short_id and is ignored.
func (c *Client) recordOutcome(err error) {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return
	}
	c.breaker.RecordFailure()
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, respBody any) error {
	reqURL := c.baseURL + path
	if params != nil {
		reqURL += "?" + params.Encode()
	}
	// logged URLs must not carry the PIN
	logURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{
			"url": logURL,
		}).WithCause(err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if stderrors.As(err, &urlErr) {
			urlErr.URL = logURL
		}
		return errors.NewAPIError("request failed", 0, map[string]any{
			"url": logURL,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.NewAPIError("failed to read response", resp.StatusCode, map[string]any{
			"url": logURL,
		}).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewAPIError(
			fmt.Sprintf("Attendee API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"url":  logURL,
				"body": string(body),
			},
		)
	}

	if respBody != nil {
		if err := decodeObject(body, respBody); err != nil {
			return errors.NewAPIError("malformed response body", resp.StatusCode, map[string]any{
				"url": logURL,
			}).WithCause(err)
		}
	}

	return nil
}

// decodeObject accepts exactly one JSON object. null, arrays, scalars and
// trailing data are rejected so a malformed payload can never yield a partial
// profile.
func decodeObject(body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected a JSON object")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.InputOffset() != int64(len(trimmed)) {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}
