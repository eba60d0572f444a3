package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/braintree-go/internal/metrics"
	"github.com/Checker-Finance/braintree-go/internal/rate"
	"github.com/Checker-Finance/braintree-go/internal/tlsverify"
	"github.com/Checker-Finance/braintree-go/pkg/apierrors"
	"github.com/Checker-Finance/braintree-go/pkg/config"
	"github.com/Checker-Finance/braintree-go/pkg/utils"
	"github.com/Checker-Finance/braintree-go/pkg/xmlcodec"
)

const (
	// Version is the client library version reported in the User-Agent.
	Version = "1.0.0"
	// APIVersion is the gateway API version this client speaks.
	APIVersion = "1"
)

// NewClient builds the resty client for cfg: base URL, credentials, XML
// headers, timeout and, for SSL environments, chain verification via verifier.
func NewClient(cfg *config.Gateway, verifier *tlsverify.Verifier, logger *zap.Logger) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.Environment.BaseURL()).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.PublicKey, cfg.PrivateKey).
		SetHeader("Accept", "application/xml").
		SetHeader("Content-Type", "application/xml").
		SetHeader("User-Agent", "Braintree Go "+Version).
		SetHeader("X-ApiVersion", APIVersion).
		SetLogger(logger.Sugar())

	if cfg.Environment.SSL {
		client.SetTLSClientConfig(verifier.TLSConfig(cfg.Environment.Server))
	}
	return client
}

// Executor sends one XML request per call under the merchant's base path and
// turns the response into a decoded document or a typed error. It never retries.
type Executor struct {
	logger     *zap.Logger
	rateMgr    *rate.Manager
	http       *resty.Client
	merchantID string
	basePath   string
}

// New creates an Executor. rateMgr may be nil to disable throttling.
func New(logger *zap.Logger, rateMgr *rate.Manager, client *resty.Client, cfg *config.Gateway) *Executor {
	return &Executor{
		logger:     logger,
		rateMgr:    rateMgr,
		http:       client,
		merchantID: cfg.MerchantID,
		basePath:   cfg.BaseMerchantPath(),
	}
}

// Get issues GET path and decodes the response document.
func (e *Executor) Get(ctx context.Context, path string) (map[string]any, error) {
	return e.do(ctx, http.MethodGet, path, "", nil)
}

// Post issues POST path with params rendered as <root>…</root>.
func (e *Executor) Post(ctx context.Context, path, root string, params map[string]any) (map[string]any, error) {
	return e.do(ctx, http.MethodPost, path, root, params)
}

// Put issues PUT path; an empty root sends no body.
func (e *Executor) Put(ctx context.Context, path, root string, params map[string]any) (map[string]any, error) {
	return e.do(ctx, http.MethodPut, path, root, params)
}

// Delete issues DELETE path.
func (e *Executor) Delete(ctx context.Context, path string) error {
	_, err := e.do(ctx, http.MethodDelete, path, "", nil)
	return err
}

func (e *Executor) do(ctx context.Context, method, path, root string, params map[string]any) (map[string]any, error) {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, e.merchantID); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req := e.http.R().SetContext(ctx)

	e.logger.Debug(method + " " + path)
	if root != "" {
		body, err := xmlcodec.Marshal(root, params)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", root, err)
		}
		e.logger.Debug(utils.MaskXML(string(body)))
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, e.basePath+path)
	elapsed := time.Since(start)
	metrics.ObserveDuration(metrics.GatewayRequestDuration, start, method)

	if err != nil {
		metrics.IncGatewayRequest(method, "error")
		var sslErr *apierrors.SSLCertificateError
		if errors.As(err, &sslErr) {
			return nil, sslErr
		}
		e.logger.Warn("braintree.http_failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("braintree: %s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	metrics.IncGatewayRequest(method, strconv.Itoa(status))

	e.logger.Info(fmt.Sprintf("%s %s %d", method, path, status),
		zap.Duration("elapsed", elapsed))
	e.logger.Debug(resp.Status())
	if len(resp.Body()) > 0 {
		e.logger.Debug(utils.MaskXML(string(resp.Body())))
	}

	if !isDecodable(status) {
		return nil, apierrors.ForStatus(status)
	}

	doc, err := xmlcodec.Unmarshal(resp.Body())
	if err != nil {
		e.logger.Warn("braintree.decode_failed",
			zap.Error(err),
			zap.String("path", path),
			zap.Int("status", status))
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return doc, nil
}

// isDecodable reports whether the body carries a document for the caller:
// any 2xx, plus 422 which holds validation errors.
func isDecodable(status int) bool {
	return (status >= 200 && status < 300) || status == http.StatusUnprocessableEntity
}
