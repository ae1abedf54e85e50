// Package firestore implements a document store client speaking the
// Firestore REST API directly, with self-managed OAuth2 service-account
// authentication. It is the single point of contact between the application
// and the remote store: repository adapters hand it a collection name, an
// optional document id and a generic field mapping, and get the same generic
// shape back.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

// Store is the document-level contract exposed to repository adapters.
// *Client is the production implementation; tests substitute fakes.
type Store interface {
	CreateDocument(ctx context.Context, collection string, data Document, documentID string) (Document, error)
	GetDocument(ctx context.Context, collection, documentID string) (Document, error)
	QueryDocuments(ctx context.Context, collection string, filters map[string]interface{}, limit, offset int) ([]Document, error)
	UpdateDocument(ctx context.Context, collection, documentID string, data Document) (Document, error)
	DeleteDocument(ctx context.Context, collection, documentID string) error
	DocumentExists(ctx context.Context, collection, documentID string) (bool, error)
}

// Config carries the already-resolved credentials and optional overrides.
// BaseURL, TokenURL and HTTPClient exist for tests and emulators; left empty
// they default to the production Google endpoints.
type Config struct {
	ProjectID           string
	ServiceAccountEmail string
	PrivateKeyPEM       string

	BaseURL    string
	TokenURL   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the Firestore REST API for a single project's default
// database. Construction performs no network I/O; the first operation
// triggers token acquisition.
type Client struct {
	projectID  string
	basePath   string
	httpClient *http.Client
	tokens     *tokenSource
	log        *zap.Logger
}

var _ Store = (*Client)(nil)

// NewClient validates the configuration, parses the service account key and
// returns a ready client. No network call happens here.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, ErrMissingProjectID
	}
	if cfg.ServiceAccountEmail == "" {
		return nil, ErrMissingServiceEmail
	}
	if cfg.PrivateKeyPEM == "" {
		return nil, ErrMissingPrivateKey
	}

	key, err := parseServiceAccountKey(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		projectID:  cfg.ProjectID,
		basePath:   fmt.Sprintf("%s/projects/%s/databases/(default)/documents", baseURL, cfg.ProjectID),
		httpClient: httpClient,
		tokens: &tokenSource{
			email:      cfg.ServiceAccountEmail,
			signingKey: key,
			tokenURL:   tokenURL,
			httpClient: httpClient,
			log:        log,
			now:        time.Now,
		},
		log: log,
	}, nil
}

// CreateDocument writes a new document. When documentID is empty the server
// assigns one. The returned document is the stored form, id included.
func (c *Client) CreateDocument(ctx context.Context, collection string, data Document, documentID string) (Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	endpoint := c.basePath + "/" + collection
	if documentID != "" {
		endpoint += "?documentId=" + url.QueryEscape(documentID)
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, endpoint, documentToWire(data), "create document")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StoreError{Op: "create document", StatusCode: status, Body: string(body)}
	}

	doc, err := decodeWireDocument(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("document created",
		zap.String("collection", collection),
		zap.Any("id", doc["id"]))
	return doc, nil
}

// GetDocument reads a document by id. A 404 answer is not an error: the
// document is simply absent and both return values are nil.
func (c *Client) GetDocument(ctx context.Context, collection, documentID string) (Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	if documentID == "" {
		return nil, ErrEmptyDocumentID
	}

	endpoint := c.documentPath(collection, documentID)

	status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, "get document")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status > 299 {
		return nil, &StoreError{Op: "get document", StatusCode: status, Body: string(body)}
	}

	return decodeWireDocument(body)
}

// UpdateDocument replaces every field of an existing document. Partial
// updates are not supported at this layer; callers needing them must
// read-modify-write the full document.
func (c *Client) UpdateDocument(ctx context.Context, collection, documentID string, data Document) (Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	if documentID == "" {
		return nil, ErrEmptyDocumentID
	}

	endpoint := c.documentPath(collection, documentID)

	status, body, err := c.doRequest(ctx, http.MethodPatch, endpoint, documentToWire(data), "update document")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StoreError{Op: "update document", StatusCode: status, Body: string(body)}
	}

	doc, err := decodeWireDocument(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("document updated",
		zap.String("collection", collection),
		zap.String("id", documentID))
	return doc, nil
}

// DeleteDocument removes a document. 200 and 204 both count as success.
func (c *Client) DeleteDocument(ctx context.Context, collection, documentID string) error {
	if collection == "" {
		return ErrEmptyCollection
	}
	if documentID == "" {
		return ErrEmptyDocumentID
	}

	endpoint := c.documentPath(collection, documentID)

	status, body, err := c.doRequest(ctx, http.MethodDelete, endpoint, nil, "delete document")
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return &StoreError{Op: "delete document", StatusCode: status, Body: string(body)}
	}

	c.log.Debug("document deleted",
		zap.String("collection", collection),
		zap.String("id", documentID))
	return nil
}

// QueryDocuments runs a structured query over one collection: zero or more
// equality predicates combined with AND, optional limit and offset. A query
// matching nothing returns an empty slice.
func (c *Client) QueryDocuments(ctx context.Context, collection string, filters map[string]interface{}, limit, offset int) ([]Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	endpoint := c.basePath + "/" + collection + ":runQuery"
	payload := map[string]interface{}{
		"structuredQuery": buildStructuredQuery(collection, filters, limit, offset),
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, endpoint, payload, "run query")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StoreError{Op: "run query", StatusCode: status, Body: string(body)}
	}

	return decodeQueryResults(body)
}

// DocumentExists probes for a document. Not atomic with any subsequent
// operation; the remote store's own conflict handling is the backstop.
func (c *Client) DocumentExists(ctx context.Context, collection, documentID string) (bool, error) {
	doc, err := c.GetDocument(ctx, collection, documentID)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

func (c *Client) documentPath(collection, documentID string) string {
	return c.basePath + "/" + collection + "/" + url.PathEscape(documentID)
}

// doRequest ensures a valid bearer token, performs one HTTP round trip and
// returns the raw status and body. A caller cancellation surfaces as the
// context's own error, not as a StoreError.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}, op string) (int, []byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, &StoreError{Op: op, Cause: err}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, &StoreError{Op: op, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, &StoreError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &StoreError{Op: op, Cause: err}
	}
	return resp.StatusCode, body, nil
}

func decodeWireDocument(body []byte) (Document, error) {
	var wire map[string]interface{}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &FormatError{Reason: "response is not a JSON object", Cause: err}
	}
	return wireToDocument(wire)
}
