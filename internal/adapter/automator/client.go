// Package automator triggers the email automation flow for completed orders.
package automator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/contracts"
	"github.com/cargaplay/whatsapp-relay/internal/shared/errs"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
	"github.com/cargaplay/whatsapp-relay/internal/shared/tracing"
)

const (
	opNotify     = "automator.NotifyOrderCompleted"
	maxErrorBody = 2 << 10
)

type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     *logger.Logger
}

var _ ports.OrderNotifier = (*Client)(nil)

func New(cfg config.Automator, logger *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.EmailWebhookURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Configured reports whether a webhook URL is set. The channel is optional.
func (client *Client) Configured() bool {
	return client.webhookURL != ""
}

// NotifyOrderCompleted posts n to the automation webhook once.
func (client *Client) NotifyOrderCompleted(ctx context.Context, n contracts.OrderCompletedNotification) (err error) {
	if !client.Configured() {
		return errs.MissingConfiguration(opNotify, "AUTOMATOR_EMAIL_WEBHOOK_URL")
	}

	ctx, span := tracing.Start(ctx, "automator.notify_order_completed")
	defer func() { tracing.End(span, err) }()

	payload, err := json.Marshal(n)
	if err != nil {
		return errs.E(errs.KindTransport, opNotify, fmt.Errorf("marshal notification: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return errs.E(errs.KindTransport, opNotify, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return errs.E(errs.KindTransport, opNotify, fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.E(errs.KindTransport, opNotify, &errs.StatusError{Status: resp.StatusCode, Body: string(body)})
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	client.logger.Info(ctx, "email_automation_triggered", "Email automation webhook accepted notification", map[string]any{
		"email": n.Email,
	})
	return nil
}
