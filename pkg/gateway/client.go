package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/edupay-labs/edupay-backend/pkg/config"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

const (
	createCollectPath = "/erp/create-collect-request"
	collectStatusPath = "/erp/collect-request"
)

var (
	errAPIKeyRequired     = errors.New("gateway api key is required")
	errSigningKeyRequired = errors.New("gateway signing key is required")
	errSchoolIDRequired   = errors.New("gateway school id is required")
	errLoggerRequired     = errors.New("gateway logger is required")
)

// CollectRequest is the gateway's answer to a collection creation call.
type CollectRequest struct {
	CollectRequestID  string `json:"collect_request_id"`
	CollectRequestURL string `json:"collect_request_url"`
}

// CollectStatus is the gateway's answer to a status poll.
type CollectStatus struct {
	Status    string           `json:"status"`
	Amount    *decimal.Decimal `json:"amount"`
	Details   json.RawMessage  `json:"details"`
	StatusJWT string           `json:"jwt"`
}

// Client issues signed collection and status requests against the remote
// payment gateway. Every call is bounded by the configured timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	signingKey string
	schoolID   string
	logger     *logger.Logger
}

// NewClient validates credentials and builds the gateway client.
func NewClient(cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errAPIKeyRequired
	}
	if strings.TrimSpace(cfg.SigningKey) == "" {
		return nil, errSigningKeyRequired
	}
	if strings.TrimSpace(cfg.SchoolID) == "" {
		return nil, errSchoolIDRequired
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		signingKey: strings.TrimSpace(cfg.SigningKey),
		schoolID:   strings.TrimSpace(cfg.SchoolID),
		logger:     logg,
	}, nil
}

// SchoolID returns the gateway-registered school identifier.
func (c *Client) SchoolID() string {
	return c.schoolID
}

// CreateCollectRequest registers a new collection with the gateway and returns
// its request id plus the hosted payment page URL.
func (c *Client) CreateCollectRequest(ctx context.Context, amount decimal.Decimal, callbackURL string) (*CollectRequest, error) {
	sign, err := signPayload(c.signingKey, jwt.MapClaims{
		"school_id":    c.schoolID,
		"amount":       amount.String(),
		"callback_url": callbackURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign collect request")
	}

	body, err := json.Marshal(map[string]string{
		"school_id":    c.schoolID,
		"amount":       amount.String(),
		"callback_url": callbackURL,
		"sign":         sign,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode collect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createCollectPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build collect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out CollectRequest
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.CollectRequestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamGateway, "gateway response missing collect_request_id")
	}
	return &out, nil
}

// FetchCollectStatus asks the gateway for the current status of a known
// collect request id.
func (c *Client) FetchCollectStatus(ctx context.Context, collectRequestID string) (*CollectStatus, error) {
	if strings.TrimSpace(collectRequestID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collect_request_id is required")
	}

	sign, err := signPayload(c.signingKey, jwt.MapClaims{
		"school_id":          c.schoolID,
		"collect_request_id": collectRequestID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign status request")
	}

	endpoint := fmt.Sprintf("%s%s/%s", c.baseURL, collectStatusPath, url.PathEscape(collectRequestID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build status request")
	}
	q := req.URL.Query()
	q.Set("school_id", c.schoolID)
	q.Set("sign", sign)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out CollectStatus
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamGateway, err, "call payment gateway")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamGateway, err, "read gateway response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.New(pkgerrors.CodeUpstreamGateway, "gateway request rejected").
			WithDetails(map[string]any{
				"status_code": resp.StatusCode,
				"upstream":    upstreamDetail(payload),
			})
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamGateway, err, "decode gateway response")
	}
	return nil
}

// upstreamDetail preserves the raw upstream body for callers deciding on
// retries; structured JSON passes through untouched.
func upstreamDetail(payload []byte) any {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return string(trimmed)
}
