// Package httpfetch — исходящий HTTP GET с фиксированным User-Agent,
// таймаутом и потолком размера тела.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooLarge — тело ответа больше разрешённого лимита.
var ErrTooLarge = errors.New("httpfetch: body exceeds limit")

// StatusError — ответ с не-2xx статусом.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Fetch failed: %d", e.StatusCode)
}

// Page — прочитанный ответ.
type Page struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// Client — обёртка над *http.Client.
type Client struct {
	hc        *http.Client
	userAgent string
}

// New создаёт клиента. hc == nil -> http.Client с заданным timeout.
func New(hc *http.Client, userAgent string, timeout time.Duration) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{hc: hc, userAgent: userAgent}
}

// Get выполняет GET и читает не более limit байт тела (limit <= 0 -> без лимита).
//
// Особенности:
//   - не-2xx -> *StatusError (тело не читается);
//   - тело больше limit -> ErrTooLarge.
func (c *Client) Get(ctx context.Context, url string, limit int64) (*Page, error) {
	const op = "httpfetch.Get"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var r io.Reader = resp.Body
	if limit > 0 {
		if resp.ContentLength > limit {
			return nil, fmt.Errorf("%s: %w", op, ErrTooLarge)
		}
		r = io.LimitReader(resp.Body, limit+1)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("%s: %w", op, ErrTooLarge)
	}

	return &Page{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
