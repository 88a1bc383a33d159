// Package whatsapp sends template messages through the Meta Graph API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/cargaplay/whatsapp-relay/internal/domain/phone"
	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/contracts"
	"github.com/cargaplay/whatsapp-relay/internal/shared/errs"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
	"github.com/cargaplay/whatsapp-relay/internal/shared/tracing"
)

const (
	opSendTemplate   = "whatsapp.SendTemplate"
	maxResponseBytes = 64 << 10
)

// Client is a fire-and-forget template sender: one POST per call, no retries.
type Client struct {
	cfg        config.WhatsApp
	httpClient *http.Client
	limiter    *rate.Limiter // nil when unlimited
	logger     *logger.Logger
}

// Ensure Client implements the interface at compile time.
var _ ports.TemplateSender = (*Client)(nil)

// New creates a client. A positive cfg.RateLimit paces sends to that many per second.
func New(cfg config.WhatsApp, logger *logger.Logger) *Client {
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return client
}

// Configured reports whether all three messaging secrets are present.
func (client *Client) Configured() bool {
	return len(client.cfg.Missing()) == 0
}

// MessagesURL is the Graph API endpoint for the configured phone number.
func (client *Client) MessagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages",
		strings.TrimRight(client.cfg.BaseURL, "/"), client.cfg.APIVersion, client.cfg.PhoneNumberID)
}

// SendTemplate normalizes to, builds a pt_BR template message with params bound to the
// body placeholders and posts it. Failures are logged and returned, never retried.
func (client *Client) SendTemplate(ctx context.Context, to, templateName string, params []string) (err error) {
	if missing := client.cfg.Missing(); len(missing) > 0 {
		err := errs.MissingConfiguration(opSendTemplate, missing...)
		client.logger.Error(ctx, "whatsapp_not_configured", "WhatsApp credentials are not configured; message skipped", err)
		return err
	}

	recipient := phone.Normalize(to)
	ctx, span := tracing.Start(ctx, "whatsapp.send_template",
		attribute.String("whatsapp.template", templateName),
		attribute.Int("whatsapp.params", len(params)),
	)
	defer func() { tracing.End(span, err) }()

	msg := contracts.NewTemplateMessage(recipient, templateName, params)
	client.logger.Debug(ctx, "whatsapp_send_attempt", "Sending WhatsApp template message", map[string]any{
		"template": templateName,
		"to":       recipient,
		"params":   params,
	})

	if client.limiter != nil {
		if waitErr := client.limiter.Wait(ctx); waitErr != nil {
			err = errs.E(errs.KindTransport, opSendTemplate, fmt.Errorf("rate limiter: %w", waitErr))
			client.logger.Error(ctx, "whatsapp_rate_limited",
				fmt.Sprintf("Gave up waiting to send template %q to %s", templateName, recipient), err)
			return err
		}
	}

	start := time.Now()
	body, status, err := client.post(ctx, msg)
	if err != nil {
		err = errs.E(errs.KindTransport, opSendTemplate, err)
		client.logger.Error(ctx, "whatsapp_send_failed",
			fmt.Sprintf("Failed to send template %q to %s", templateName, recipient), err)
		return err
	}
	if status < 200 || status > 299 {
		err = errs.E(errs.KindTransport, opSendTemplate, &errs.StatusError{Status: status, Body: string(body)})
		client.logger.Error(ctx, "whatsapp_send_rejected",
			fmt.Sprintf("Graph API rejected template %q for %s", templateName, recipient), err)
		return err
	}

	var resp contracts.SendResponse
	_ = json.Unmarshal(body, &resp)
	messageID := ""
	if len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}

	client.logger.Info(ctx, "whatsapp_sent", "WhatsApp template message sent", map[string]any{
		"template":    templateName,
		"to":          recipient,
		"message_id":  messageID,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// post issues the request and returns the (bounded) response body and status.
func (client *Client) post(ctx context.Context, msg contracts.TemplateMessage) ([]byte, int, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.MessagesURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+client.cfg.AccessToken)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
