// Package gateway is the authenticated client for the DevRoom data API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devroom/checkout/internal/checkout/domain"
	"github.com/devroom/checkout/internal/config"
	"github.com/devroom/checkout/internal/credential"
	obsmetrics "github.com/devroom/checkout/internal/observability/metrics"
)

// Client implements domain.Gateway. All operations share the auth protocol:
// a cached bearer token is minted on demand, and a call rejected for auth
// reasons gets exactly one fresh token and one retry. No other retry policy.
type Client struct {
	authEndpoint     string
	dataEndpoint     string
	businessEndpoint string
	applicationID    string
	apiKey           string

	creds   credential.Store
	client  *http.Client
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func NewClient(cfg config.Config, creds credential.Store, log *zap.Logger, metrics *obsmetrics.Metrics) *Client {
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		authEndpoint:     strings.TrimRight(cfg.AuthEndpoint, "/"),
		dataEndpoint:     strings.TrimRight(cfg.DataEndpoint, "/"),
		businessEndpoint: strings.TrimRight(cfg.BusinessEndpoint, "/"),
		applicationID:    cfg.ApplicationID,
		apiKey:           cfg.APIKey,
		creds:            creds,
		client:           &http.Client{Timeout: timeout},
		log:              log.Named("gateway"),
		metrics:          metrics,
	}
}

// FetchPayment retrieves the payment record.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	var record domain.PaymentRecord
	err := c.withAuthRetry(ctx, "fetch_payment", func(token string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dataEndpoint+"/"+paymentID, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := statusError(resp); err != nil {
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// businessPayload maps form field names to the upstream wire schema. The VAT
// id populates both vatValue and vatType; the upstream contract has no
// separate VAT type yet.
type businessPayload struct {
	Name                string `json:"name"`
	BillingAddressLine1 string `json:"billingAddressLine1"`
	PostalCode          string `json:"postalCode"`
	City                string `json:"city"`
	Country             string `json:"country"`
	VATValue            string `json:"vatValue"`
	VATType             string `json:"vatType"`
}

// SubmitBusiness stores a business registration for the customer.
func (c *Client) SubmitBusiness(ctx context.Context, customerID string, form domain.BusinessFormData) error {
	payload := businessPayload{
		Name:                form.Name,
		BillingAddressLine1: form.Address,
		PostalCode:          form.PostalCode,
		City:                form.City,
		Country:             form.Country,
		VATValue:            form.VATID,
		VATType:             form.VATID,
	}

	return c.withAuthRetry(ctx, "submit_business", func(token string) error {
		resp, err := c.postJSON(ctx, c.businessEndpoint+"/"+customerID, token, payload)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return statusError(resp)
	})
}

type geolocationPayload struct {
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Region     string `json:"region"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// SubmitGeolocation stores the edge-supplied jurisdiction signals. Failures
// collapse to ErrGeolocationSave; callers only surface a fixed message.
func (c *Client) SubmitGeolocation(ctx context.Context, customerID string, hint domain.GeolocationHint) (string, error) {
	payload := geolocationPayload{
		PostalCode: hint.PostalCode,
		City:       hint.City,
		Country:    hint.Country,
		Region:     hint.Region,
	}

	var message string
	err := c.withAuthRetry(ctx, "submit_geolocation", func(token string) error {
		resp, err := c.postJSON(ctx, c.businessEndpoint+"/"+customerID, token, payload)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := statusError(resp); err != nil {
			return err
		}

		var decoded messageResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil {
			message = decoded.Message
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAuthFailure) || isStatusError(err) {
			return "", ErrGeolocationSave
		}
		return "", fmt.Errorf("%w: %v", ErrGeolocationSave, err)
	}
	if message == "" {
		message = "Successfully saved geolocation data"
	}
	return message, nil
}

// withAuthRetry runs fn with a cached token, minting one when absent. On an
// auth failure it mints exactly one fresh token and retries once; the second
// outcome propagates unmodified.
func (c *Client) withAuthRetry(ctx context.Context, operation string, fn func(token string) error) error {
	token, ok, err := c.creds.Get(ctx)
	if err != nil {
		c.log.Warn("token cache read failed", zap.Error(err))
	}
	if !ok {
		token, err = c.mintToken(ctx)
		if err != nil {
			c.metrics.RecordGatewayCall(operation, "token_mint_error")
			return err
		}
	}

	err = fn(token)
	if err == nil {
		c.metrics.RecordGatewayCall(operation, "ok")
		return nil
	}
	if !errors.Is(err, ErrAuthFailure) {
		c.metrics.RecordGatewayCall(operation, "error")
		return err
	}

	c.log.Info("retrying after auth failure", zap.String("operation", operation))
	token, mintErr := c.mintToken(ctx)
	if mintErr != nil {
		c.metrics.RecordGatewayCall(operation, "token_mint_error")
		return mintErr
	}

	if err := fn(token); err != nil {
		c.metrics.RecordGatewayCall(operation, "retry_error")
		return err
	}
	c.metrics.RecordGatewayCall(operation, "retry_ok")
	return nil
}

type tokenRequest struct {
	ApplicationID string `json:"applicationId"`
	Key           string `json:"key"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) mintToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(tokenRequest{
		ApplicationID: c.applicationID,
		Key:           c.apiKey,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		return "", ErrTokenMint
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMint, err)
	}
	if strings.TrimSpace(decoded.Token) == "" {
		return "", ErrTokenMint
	}

	if err := c.creds.Put(ctx, decoded.Token); err != nil {
		c.log.Warn("token cache write failed", zap.Error(err))
	}
	c.metrics.RecordTokenMint()
	return decoded.Token, nil
}

func (c *Client) postJSON(ctx context.Context, url, token string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// statusError drains a non-2xx response into a StatusError.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	return &StatusError{
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}

func isStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
