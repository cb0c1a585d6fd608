package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"keygate/internal/application/order/gateway"
	"keygate/internal/shared/biztime"
	apperrors "keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

const signatureHeader = "Gateway-Signature"

// maxCallbackBody bounds webhook payload reads.
const maxCallbackBody = 64 * 1024

// StripeGatewayConfig holds the configuration for the hosted-checkout
// gateway integration.
type StripeGatewayConfig struct {
	APIKey           string
	WebhookSecret    string
	Endpoint         string
	ToleranceSeconds int
}

// StripeGateway verifies signed webhook callbacks and answers direct
// transaction queries against the gateway API.
type StripeGateway struct {
	config     StripeGatewayConfig
	httpClient *http.Client
	logger     logger.Interface
}

func NewStripeGateway(config StripeGatewayConfig, log logger.Interface) *StripeGateway {
	if config.ToleranceSeconds <= 0 {
		config.ToleranceSeconds = 300
	}
	return &StripeGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: log,
	}
}

// Ensure StripeGateway implements PaymentGateway
var _ gateway.PaymentGateway = (*StripeGateway)(nil)

type callbackPayload struct {
	TransactionRef string `json:"transaction_ref"`
	AmountPaid     uint64 `json:"amount_paid"`
	Currency       string `json:"currency"`
	Livemode       bool   `json:"livemode"`
	PaidAt         int64  `json:"paid_at"`
}

// VerifyCallback checks the HMAC signature header against the raw body
// before parsing anything. The header carries a timestamp and signature
// as "t=<unix>,v1=<hex>"; the signed message is "<t>.<body>" and the
// timestamp must fall within the configured tolerance to blunt replays.
func (g *StripeGateway) VerifyCallback(req *http.Request) (*gateway.CallbackEvent, error) {
	header := req.Header.Get(signatureHeader)
	if header == "" {
		return nil, newSignatureError("missing signature header")
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxCallbackBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read callback body: %w", err)
	}

	ts, sig, err := parseSignatureHeader(header)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC().Unix()
	tolerance := int64(g.config.ToleranceSeconds)
	if ts < now-tolerance || ts > now+tolerance {
		return nil, newSignatureError("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(g.config.WebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(expected, provided) {
		return nil, newSignatureError("signature mismatch")
	}

	var payload callbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse callback payload: %w", err)
	}
	if payload.TransactionRef == "" {
		return nil, fmt.Errorf("callback payload missing transaction ref")
	}

	return &gateway.CallbackEvent{
		TransactionRef: payload.TransactionRef,
		Amount:         payload.AmountPaid,
		Currency:       payload.Currency,
		Live:           payload.Livemode,
		PaidAt:         time.Unix(payload.PaidAt, 0).UTC(),
	}, nil
}

type queryResponse struct {
	TransactionRef string `json:"transaction_ref"`
	Status         string `json:"status"`
	AmountPaid     uint64 `json:"amount_paid"`
	Currency       string `json:"currency"`
}

// QueryPayment fetches the transaction state from the gateway API.
func (g *StripeGateway) QueryPayment(ctx context.Context, txRef string) (*gateway.PaymentState, error) {
	url := fmt.Sprintf("%s/v1/transactions/%s", strings.TrimRight(g.config.Endpoint, "/"), txRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway query: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gateway has no transaction %s", txRef)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway query returned status %d", resp.StatusCode)
	}

	var result queryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCallbackBody)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	return &gateway.PaymentState{
		TransactionRef: result.TransactionRef,
		Paid:           result.Status == "paid",
		Amount:         result.AmountPaid,
		Currency:       result.Currency,
	}, nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var ts int64
	var sig string

	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", newSignatureError("malformed signature timestamp")
			}
			ts = parsed
		case "v1":
			sig = v
		}
	}

	if ts == 0 || sig == "" {
		return 0, "", newSignatureError("malformed signature header")
	}
	return ts, sig, nil
}

func newSignatureError(details string) error {
	return apperrors.NewUnauthorizedError("invalid gateway signature", details).
		WithReason(apperrors.ReasonInvalidSignature)
}
