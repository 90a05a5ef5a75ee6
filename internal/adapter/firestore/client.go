// Package firestore is a DocumentStore over the Firestore REST API. It
// authenticates with a web API key only, so scripts do not need a service
// account.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

const (
	DefaultBaseURL = "https://firestore.googleapis.com/v1"
	listPageSize   = 300
)

type Config struct {
	ProjectID string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	http    *http.Client
	docsURL string
	apiKey  string
}

// APIError is returned for any non-success response other than a 404 on
// Get or Delete.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firestore: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore: project id is required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		docsURL: fmt.Sprintf("%s/projects/%s/databases/(default)/documents", base, url.PathEscape(cfg.ProjectID)),
		apiKey:  cfg.APIKey,
	}, nil
}

type document struct {
	Name   string               `json:"name,omitempty"`
	Fields map[string]wireValue `json:"fields,omitempty"`
}

type listResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) Set(ctx context.Context, collection, id string, fields domain.Fields) error {
	body, err := c.encodeDocument(fields)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPatch, c.documentURL(collection, id), nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	return nil
}

func (c *Client) Get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, c.documentURL(collection, id), nil, nil)
	if err != nil {
		return domain.Document{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Document{}, false, nil
	}

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, false, readAPIError(resp)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.Document{}, false, fmt.Errorf("firestore: decode %s/%s: %w", collection, id, err)
	}

	out, err := toDomain(doc)
	if err != nil {
		return domain.Document{}, false, err
	}

	return out, true, nil
}

// List follows nextPageToken until the collection is exhausted.
func (c *Client) List(ctx context.Context, collection string) ([]domain.Document, error) {
	var docs []domain.Document
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(listPageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		resp, err := c.do(ctx, http.MethodGet, c.collectionURL(collection), q, nil)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			err := readAPIError(resp)
			resp.Body.Close()
			return nil, err
		}

		var page listResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("firestore: decode list %s: %w", collection, err)
		}

		for _, d := range page.Documents {
			doc, err := toDomain(d)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}

		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Update patches only the given top-level fields using an update mask.
func (c *Client) Update(ctx context.Context, collection, id string, partial domain.Fields) error {
	body, err := c.encodeDocument(partial)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Add("updateMask.fieldPaths", fieldPath(k))
	}

	resp, err := c.do(ctx, http.MethodPatch, c.documentURL(collection, id), q, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	return nil
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.documentURL(collection, id), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		return nil
	}

	return readAPIError(resp)
}

// Add creates a document with a server-assigned id.
func (c *Client) Add(ctx context.Context, collection string, fields domain.Fields) (string, error) {
	body, err := c.encodeDocument(fields)
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, c.collectionURL(collection), nil, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("firestore: decode created document: %w", err)
	}

	return lastSegment(doc.Name), nil
}

func (c *Client) encodeDocument(fields domain.Fields) ([]byte, error) {
	enc, err := encodeFields(fields)
	if err != nil {
		return nil, fmt.Errorf("firestore: %w", err)
	}

	return json.Marshal(map[string]any{"fields": enc})
}

func (c *Client) do(ctx context.Context, method, rawURL string, q url.Values, body []byte) (*http.Response, error) {
	if q == nil {
		q = url.Values{}
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	target := rawURL
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("firestore: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firestore: %s %s: %w", method, rawURL, err)
	}

	return resp, nil
}

func (c *Client) collectionURL(collection string) string {
	return c.docsURL + "/" + escapePath(collection)
}

func (c *Client) documentURL(collection, id string) string {
	return c.collectionURL(collection) + "/" + url.PathEscape(id)
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}

	return strings.Join(parts, "/")
}

var simpleFieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// fieldPath quotes names that are not plain identifiers.
func fieldPath(name string) string {
	if simpleFieldName.MatchString(name) {
		return name
	}

	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func toDomain(d document) (domain.Document, error) {
	fields, err := decodeFields(d.Fields)
	if err != nil {
		return domain.Document{}, fmt.Errorf("firestore: %s: %w", d.Name, err)
	}

	return domain.Document{ID: lastSegment(d.Name), Fields: fields}, nil
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}

	return name
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}

	var parsed errorResponse
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		if parsed.Error.Status != "" {
			apiErr.Status = parsed.Error.Status
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	return apiErr
}
