package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/helixir/job-board-service/internal/config"
)

// NewElasticClient builds an Elasticsearch client from cfg. The client
// retries transport failures and 502/503/504 responses up to cfg.MaxRetries.
func NewElasticClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// ElasticEngine implements Engine over the Elasticsearch REST API.
type ElasticEngine struct {
	client *elasticsearch.Client
}

// Compile-time check.
var _ Engine = (*ElasticEngine)(nil)

// NewElasticEngine wraps client.
func NewElasticEngine(client *elasticsearch.Client) (*ElasticEngine, error) {
	if client == nil {
		return nil, fmt.Errorf("client must not be nil")
	}
	return &ElasticEngine{client: client}, nil
}

// Search runs req with track_total_hits enabled so the count is exact.
func (e *ElasticEngine) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	query := req.Query
	if query == nil {
		query = map[string]any{"match_all": map[string]any{}}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]any{
		"query":            query,
		"from":             req.From,
		"size":             req.Size,
		"track_total_hits": true,
	}); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(req.Index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return nil, responseError("search", res)
	}

	var body struct {
		Hits struct {
			Total json.RawMessage `json:"total"`
			Hits  []Hit           `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return &SearchResponse{Hits: body.Hits.Hits, Total: body.Hits.Total}, nil
}

// Index upserts body under id.
func (e *ElasticEngine) Index(ctx context.Context, index, id string, body []byte) (WriteResult, error) {
	res, err := e.client.Index(
		index,
		bytes.NewReader(body),
		e.client.Index.WithDocumentID(id),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("index request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return "", responseError("index", res)
	}
	return decodeWriteResult(res.Body)
}

// Delete removes id. A 404, whether for the document or the whole index,
// is reported as ResultNotFound.
func (e *ElasticEngine) Delete(ctx context.Context, index, id string) (WriteResult, error) {
	res, err := e.client.Delete(index, id, e.client.Delete.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("delete request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusNotFound {
		return ResultNotFound, nil
	}
	if res.IsError() {
		return "", responseError("delete", res)
	}
	return decodeWriteResult(res.Body)
}

// Ping reports whether the cluster answers.
func (e *ElasticEngine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("ping: %s", res.Status())
	}
	return nil
}

func decodeWriteResult(r io.Reader) (WriteResult, error) {
	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "", fmt.Errorf("decode write response: %w", err)
	}
	if body.Result == "" {
		return "", fmt.Errorf("write response has no result")
	}
	return WriteResult(body.Result), nil
}

// responseError turns an error response into an error carrying the status
// and, when present, the engine's error type and reason.
func responseError(op string, res *esapi.Response) error {
	var body struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Error.Type == "" {
		return fmt.Errorf("%s: %s", op, res.Status())
	}
	return fmt.Errorf("%s: %s: %s: %s", op, res.Status(), body.Error.Type, body.Error.Reason)
}
