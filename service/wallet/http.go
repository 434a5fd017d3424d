package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// transaction is the wire form of a value transfer. The signature
// covers the colon-joined signing string, not the JSON bytes.
type transaction struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Token     string `json:"token,omitempty"`
	Unlock    int64  `json:"unlock,omitempty"`
	TraceID   string `json:"traceId"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

func (t transaction) signingString() string {
	return fmt.Sprintf("%s:%s:%s:%s:%d:%s:%d", t.From, t.To, t.Amount, t.Token, t.Unlock, t.TraceID, t.Timestamp)
}

type mint struct {
	Owner     string `json:"owner"`
	Token     string `json:"token"`
	Supply    string `json:"supply"`
	TraceID   string `json:"traceId"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

func (m mint) signingString() string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", m.Owner, m.Token, m.Supply, m.TraceID, m.Timestamp)
}

const submitAttempts = 3

// post submits a signed payload. Transport errors and 5xx answers are
// retried with exponential backoff; 4xx answers are final. The trace id
// inside the payload keeps retried submissions idempotent on the node.
func (c *client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.node+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}

		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return apiError(resp)
		case resp.StatusCode >= 400:
			return backoff.Permanent(apiError(resp))
		}

		if out == nil {
			return nil
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}

		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), submitAttempts-1), ctx)
	return backoff.Retry(op, b)
}

// get performs a single read; callers poll reads on their own cadence.
func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.node+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("node: %s", body.Error)
	}

	return fmt.Errorf("node: %s", resp.Status)
}
