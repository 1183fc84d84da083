// Package httpjson issues the single GET-and-decode call every backend
// adapter makes.
package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// maxErrorBody caps how much of a non-200 body is kept in the error.
const maxErrorBody = 512

// ErrStatus is returned, wrapped, for any non-200 response.
var ErrStatus = errors.New("unexpected status")

// Get sends a GET to rawURL with params merged into its query string, then
// decodes the JSON body into out.
func Get(ctx context.Context, client *http.Client, rawURL string, params url.Values, headers http.Header, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Float renders a coordinate component the way backends expect it in query
// strings and paths: plain decimal, no exponent, no trailing zeros.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
