package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/Kronmar-Bafu/lindasnext-migration-helper/errors"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/metric"
	"github.com/Kronmar-Bafu/lindasnext-migration-helper/rdf"
)

// Accept header values for the two SPARQL protocol response forms.
const (
	AcceptNTriples          = "application/n-triples"
	AcceptSPARQLResultsJSON = "application/sparql-results+json"
)

// Query kind labels for logs and metrics.
const (
	KindConstruct = "construct"
	KindSelect    = "select"
)

// maxErrorBodyBytes bounds how much of an error response is surfaced.
const maxErrorBodyBytes = 2048

// Client executes SPARQL queries against one endpoint. The two stores
// under comparison are read-only collaborators: only CONSTRUCT and SELECT
// are ever issued, never updates. Failed queries are surfaced verbatim
// and never retried — a comparison must reflect a single point in time.
type Client struct {
	name       string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metric.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps the request rate against the endpoint. The LINDAS
// endpoints are shared public infrastructure; whole-population discovery
// plus hundreds of per-entity fetches should not hammer them.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the logger used for per-query debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics enables Prometheus metric recording for this client.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for one store. The name identifies the store
// in logs, metrics and error messages (e.g. "stardog/LINDAS PROD").
func NewClient(name, endpoint string, opts ...Option) (*Client, error) {
	if name == "" || endpoint == "" {
		return nil, apperrors.WrapInvalid(apperrors.ErrMissingConfig,
			"Client", "NewClient", "name and endpoint are required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperrors.WrapInvalid(fmt.Errorf("%w: bad endpoint URL %q",
			apperrors.ErrInvalidConfig, endpoint), "Client", "NewClient", "endpoint validation")
	}

	c := &Client{
		name:       name,
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the store name this client talks to.
func (c *Client) Name() string {
	return c.name
}

// Construct executes a CONSTRUCT query and parses the N-Triples response
// into a graph. Literal objects are NFC-normalized during parsing.
func (c *Client) Construct(ctx context.Context, query string) (*rdf.Graph, error) {
	body, err := c.do(ctx, query, AcceptNTriples, KindConstruct)
	if err != nil {
		return nil, err
	}
	g, err := rdf.ParseNTriples(body)
	if err != nil {
		return nil, apperrors.WrapInvalid(err, "Client", "Construct",
			fmt.Sprintf("response parsing (%s)", c.name))
	}
	if c.metrics != nil {
		c.metrics.RecordTriples(c.name, g.Len())
	}
	return g, nil
}

// Binding is one SELECT result row, variable name to term.
type Binding map[string]rdf.Term

// Select executes a SELECT query and returns the result bindings.
func (c *Client) Select(ctx context.Context, query string) ([]Binding, error) {
	body, err := c.do(ctx, query, AcceptSPARQLResultsJSON, KindSelect)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results struct {
			Bindings []map[string]struct {
				Type     string `json:"type"`
				Value    string `json:"value"`
				Lang     string `json:"xml:lang"`
				Datatype string `json:"datatype"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.WrapInvalid(fmt.Errorf("%w: %v", apperrors.ErrParseFailed, err),
			"Client", "Select", fmt.Sprintf("result decoding (%s)", c.name))
	}

	bindings := make([]Binding, 0, len(result.Results.Bindings))
	for _, row := range result.Results.Bindings {
		b := make(Binding, len(row))
		for name, v := range row {
			switch v.Type {
			case "uri":
				b[name] = rdf.NewIRI(v.Value)
			case "bnode":
				b[name] = rdf.NewBlank(v.Value)
			case "literal", "typed-literal":
				switch {
				case v.Lang != "":
					b[name] = rdf.NormalizeLiteral(rdf.NewLangLiteral(v.Value, v.Lang))
				case v.Datatype != "":
					b[name] = rdf.NormalizeLiteral(rdf.NewTypedLiteral(v.Value, v.Datatype))
				default:
					b[name] = rdf.NormalizeLiteral(rdf.NewLiteral(v.Value))
				}
			default:
				return nil, apperrors.WrapInvalid(
					fmt.Errorf("%w: unknown binding type %q", apperrors.ErrParseFailed, v.Type),
					"Client", "Select", fmt.Sprintf("result decoding (%s)", c.name))
			}
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// do issues one GET request carrying the query and returns the raw
// response body.
func (c *Client) do(ctx context.Context, query, accept, kind string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.WrapTransient(err, "Client", "do",
				fmt.Sprintf("rate limit wait (%s)", c.name))
		}
	}

	reqURL := c.endpoint + "?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.WrapInvalid(err, "Client", "do",
			fmt.Sprintf("request building (%s)", c.name))
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordQuery(c.name, kind, time.Since(start), err)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.WrapTransient(
				fmt.Errorf("%w: %s: %v", apperrors.ErrQueryTimeout, c.name, err),
				"Client", "do", "query execution")
		}
		return nil, apperrors.WrapTransient(
			fmt.Errorf("%w: %s: %v", apperrors.ErrEndpointUnreachable, c.name, err),
			"Client", "do", "query execution")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, apperrors.WrapTransient(
			fmt.Errorf("%w: %s returned %d: %s",
				apperrors.ErrQueryFailed, c.name, resp.StatusCode, string(snippet)),
			"Client", "do", "query execution")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.WrapTransient(err, "Client", "do",
			fmt.Sprintf("response reading (%s)", c.name))
	}

	c.logger.Debug("sparql query completed",
		"store", c.name,
		"kind", kind,
		"duration", time.Since(start),
		"bytes", len(body))
	return body, nil
}
