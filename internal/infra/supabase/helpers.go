package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/boddenberg/office-admin-go/internal/domain"
	"github.com/boddenberg/office-admin-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// ============================================================
// HTTP helpers for GET, POST, PATCH, DELETE
// ============================================================

// apiError is a non-2xx PostgREST response.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("supabase returned status %d [%s]: %s", e.Status, e.Code, e.Message)
}

// PostgreSQL error codes relayed by PostgREST.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify turns an apiError into a domain error. Client errors are
// permanent; 5xx and 429 stay retryable.
func classify(e *apiError) error {
	switch e.Code {
	case pgUniqueViolation:
		return resilience.Permanent(domain.ConflictFromConstraint(e.Message))
	case pgForeignKeyViolation:
		return resilience.Permanent(domain.NotFoundFromConstraint(e.Message + " " + e.Details))
	}
	if e.Status >= 400 && e.Status < 500 && e.Status != http.StatusTooManyRequests {
		return resilience.Permanent(e)
	}
	return e
}

func (c *Client) do(ctx context.Context, method, path string, payload any, prefer string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, resilience.Permanent(err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path), body)
	if err != nil {
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return nil, classify(apiErr)
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return respBody, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

func (c *Client) doPost(ctx context.Context, table string, data any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, table, data, "return=minimal")
}

// doPatch returns the updated rows so callers can detect a missing target.
func (c *Client) doPatch(ctx context.Context, path string, data any) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, path, data, "return=representation")
}

// doDelete returns the deleted rows so callers can detect a missing target.
func (c *Client) doDelete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "return=representation")
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================
// Query and decoding helpers
// ============================================================

// eq builds a PostgREST equality filter value.
func eq(v string) string {
	return "eq." + url.QueryEscape(v)
}

// escapeLike quotes ilike wildcards so the filter matches v literally.
func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`, "*", `\*`)
	return url.QueryEscape(r.Replace(v))
}

// scoped appends the owner filter unless the scope sees every row.
func scoped(path string, scope domain.Scope) string {
	if scope.All {
		return path
	}
	return path + "&criado_por=" + eq(scope.OwnerID)
}

func decodeList[T any](body []byte) ([]T, error) {
	var rows []T
	if len(body) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func decodeFirst[T any](body []byte) (*T, error) {
	rows, err := decodeList[T](body)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// expectRow reports a missing row as a permanent not-found error.
func expectRow(body []byte, notFound error) error {
	rows, err := decodeList[json.RawMessage](body)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return resilience.Permanent(notFound)
	}
	return nil
}
