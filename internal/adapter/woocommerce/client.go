// Package woocommerce reads orders from the store's REST API.
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cargaplay/whatsapp-relay/internal/domain/orders"
	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/errs"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
	"github.com/cargaplay/whatsapp-relay/internal/shared/tracing"
)

const (
	opFetchOrder     = "woocommerce.FetchOrder"
	ordersPath       = "/wp-json/wc/v3/orders/"
	maxResponseBytes = 4 << 20
	maxErrorBody     = 2 << 10
)

type Client struct {
	cfg        config.WooCommerce
	httpClient *http.Client
	logger     *logger.Logger
}

var _ ports.OrderFetcher = (*Client)(nil)

func New(cfg config.WooCommerce, logger *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Configured reports whether the base URL and both credentials are present.
func (client *Client) Configured() bool {
	return len(client.cfg.Missing()) == 0
}

// OrderURL returns the REST resource for id.
func (client *Client) OrderURL(id orders.ID) string {
	return strings.TrimRight(client.cfg.BaseURL, "/") + ordersPath + url.PathEscape(id.String())
}

// FetchOrder performs exactly one authenticated GET for the order. Any failure other
// than missing configuration is classified as an upstream fetch failure.
func (client *Client) FetchOrder(ctx context.Context, id orders.ID) (order *orders.Order, err error) {
	if missing := client.cfg.Missing(); len(missing) > 0 {
		return nil, errs.MissingConfiguration(opFetchOrder, missing...)
	}

	ctx, span := tracing.Start(ctx, "woocommerce.fetch_order", attribute.String("order.id", id.String()))
	defer func() { tracing.End(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.OrderURL(id), nil)
	if err != nil {
		return nil, errs.E(errs.KindUpstreamFetch, opFetchOrder, fmt.Errorf("create request: %w", err))
	}
	req.SetBasicAuth(client.cfg.ConsumerKey, client.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, errs.E(errs.KindUpstreamFetch, opFetchOrder, fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errs.E(errs.KindUpstreamFetch, opFetchOrder,
			&errs.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	order = &orders.Order{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(order); err != nil {
		return nil, errs.E(errs.KindUpstreamFetch, opFetchOrder, fmt.Errorf("decode order: %w", err))
	}
	if order.ID.Empty() {
		order.ID = id
	}

	client.logger.Debug(ctx, "order_fetched", "Order fetched from store", map[string]any{
		"order_id":   id.String(),
		"line_items": len(order.LineItems),
	})
	return order, nil
}
