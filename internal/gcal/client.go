// Package gcal is a minimal Google Calendar v3 events client. It only does
// what the reconciliation engine needs: windowed paginated listing and
// per-event insert/update/delete, with retry on transient failures. The
// caller supplies authentication (an authorized http.Client or a bearer
// token); this package never handles credentials.
package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"calsync/internal/httpx"
)

var errNoStart = errors.New("gcal: event has no start")

type Client struct {
	BaseURL string
	// Token, when non-empty, is sent as a Bearer Authorization header.
	// Leave empty if the http.Client's transport already injects auth.
	Token string
	HTTP  *http.Client
	Retry httpx.RetryConfig
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/calendar/v3"
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP: &http.Client{
			Timeout: 2 * time.Minute, // per request
		},
		Retry: httpx.DefaultRetryConfig(),
	}
}

// ListPage fetches one page of events whose start falls inside the window.
// singleEvents expands recurring series so every item has a concrete start.
func (c *Client) ListPage(ctx context.Context, calendarID string, timeMin, timeMax time.Time, pageToken string) (*ListEventsResponse, error) {
	u, err := url.Parse(fmt.Sprintf("%s/calendars/%s/events", c.BaseURL, url.PathEscape(calendarID)))
	if err != nil {
		return nil, fmt.Errorf("gcal: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	q.Set("timeMax", timeMax.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("showDeleted", "false")
	q.Set("maxResults", "2500")
	q.Set("orderBy", "startTime")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	u.RawQuery = q.Encode()

	var out ListEventsResponse
	err = httpx.DoJSON(ctx, c.HTTP, c.buildReq(http.MethodGet, u.String(), nil), &out, c.Retry)
	if err != nil {
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}
	return &out, nil
}

// Insert creates an event. A duplicate is surfaced as a conflict error
// (check with IsConflict) so the caller can fall back to an update.
func (c *Client) Insert(ctx context.Context, calendarID string, ev *Event) (*Event, error) {
	u := fmt.Sprintf("%s/calendars/%s/events?sendUpdates=none", c.BaseURL, url.PathEscape(calendarID))
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("gcal: marshal event: %w", err)
	}
	var out Event
	if err := httpx.DoJSON(ctx, c.HTTP, c.buildReq(http.MethodPost, u, body), &out, c.Retry); err != nil {
		return nil, fmt.Errorf("gcal: insert event: %w", err)
	}
	return &out, nil
}

// Update replaces an event body in place, preserving the remote id.
func (c *Client) Update(ctx context.Context, calendarID, eventID string, ev *Event) (*Event, error) {
	u := fmt.Sprintf("%s/calendars/%s/events/%s?sendUpdates=none", c.BaseURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("gcal: marshal event: %w", err)
	}
	var out Event
	if err := httpx.DoJSON(ctx, c.HTTP, c.buildReq(http.MethodPut, u, body), &out, c.Retry); err != nil {
		return nil, fmt.Errorf("gcal: update event %s: %w", eventID, err)
	}
	return &out, nil
}

// Delete removes an event. Already-gone events (404/410) are not errors:
// the desired outcome is "absent" either way.
func (c *Client) Delete(ctx context.Context, calendarID, eventID string) error {
	u := fmt.Sprintf("%s/calendars/%s/events/%s?sendUpdates=none", c.BaseURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	_, _, err := httpx.DoWithRetry(ctx, c.HTTP, c.buildReq(http.MethodDelete, u, nil), c.Retry)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("gcal: delete event %s: %w", eventID, err)
	}
	return nil
}

func (c *Client) buildReq(method, rawURL string, body []byte) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		var rd *bytes.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		} else {
			rd = bytes.NewReader(nil)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		}
		return req, nil
	}
}

// IsConflict reports whether err is an HTTP 409 (duplicate create).
func IsConflict(err error) bool {
	var herr *httpx.HTTPError
	return errors.As(err, &herr) && herr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is an HTTP 404 or 410.
func IsNotFound(err error) bool {
	var herr *httpx.HTTPError
	if !errors.As(err, &herr) {
		return false
	}
	return herr.StatusCode == http.StatusNotFound || herr.StatusCode == http.StatusGone
}
