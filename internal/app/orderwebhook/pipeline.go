// Package orderwebhook turns "order completed" webhooks into a WhatsApp template
// message and an email automation trigger.
package orderwebhook

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cargaplay/whatsapp-relay/internal/domain/orders"
	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/contracts"
	"github.com/cargaplay/whatsapp-relay/internal/shared/errs"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
	"github.com/cargaplay/whatsapp-relay/internal/shared/tracing"
)

// OrderTemplate is the template sent for an enriched order.
const OrderTemplate = "pedido"

// minPhoneLength is the raw billing phone length a number must exceed to be messaged.
const minPhoneLength = 5

// Outcome is the terminal state of one pipeline run.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeBadRequest
	OutcomeMisconfigured
	OutcomeEnrichmentFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeBadRequest:
		return "bad_request"
	case OutcomeMisconfigured:
		return "misconfigured"
	case OutcomeEnrichmentFailed:
		return "enrichment_failed"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the outcome to the webhook response status.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeDone:
		return http.StatusOK
	case OutcomeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Result reports what a run did. WhatsAppErr and EmailErr are informational only.
type Result struct {
	Outcome        Outcome
	Err            error
	ActivationCode string
	WhatsAppSent   bool
	EmailSent      bool
	WhatsAppErr    error
	EmailErr       error
}

// Pipeline runs delay, enrichment, extraction and notification for one order id.
type Pipeline struct {
	fetcher     ports.OrderFetcher
	sender      ports.TemplateSender
	notifier    ports.OrderNotifier
	logger      *logger.Logger
	settleDelay time.Duration

	drainOnce sync.Once
	draining  chan struct{}
}

// NewPipeline wires the pipeline. settleDelay is waited before every order fetch so the
// store can finish persisting the order's metadata.
func NewPipeline(fetcher ports.OrderFetcher, sender ports.TemplateSender, notifier ports.OrderNotifier,
	logger *logger.Logger, settleDelay time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		sender:      sender,
		notifier:    notifier,
		logger:      logger,
		settleDelay: settleDelay,
		draining:    make(chan struct{}),
	}
}

// Drain cuts every pending and future settle delay short. Runs already waiting
// proceed immediately. Safe to call more than once.
func (p *Pipeline) Drain() {
	p.drainOnce.Do(func() { close(p.draining) })
}

// Process runs the pipeline for id. The returned error is non-nil only for outcomes
// other than OutcomeDone.
func (p *Pipeline) Process(ctx context.Context, id orders.ID) (res Result) {
	received := time.Now()
	ctx, span := tracing.Start(ctx, "orderwebhook.process", attribute.String("order.id", id.String()))
	defer func() {
		span.SetAttributes(attribute.String("pipeline.outcome", res.Outcome.String()))
		tracing.End(span, res.Err)
	}()

	if id.Empty() {
		res.Outcome = OutcomeBadRequest
		res.Err = errEmptyOrderKey
		p.logger.Warn(ctx, "order_key_missing", "Webhook received without order_key", nil)
		return res
	}

	if !p.fetcher.Configured() {
		res.Outcome = OutcomeMisconfigured
		res.Err = errs.MissingConfiguration("orderwebhook.Process", "WC_URL", "WC_CONSUMER_KEY", "WC_CONSUMER_SECRET")
		p.logger.Error(ctx, "order_fetch_not_configured", "Order system credentials are not configured", res.Err)
		return res
	}

	p.logger.Info(ctx, "order_received", "Order webhook accepted; waiting for the store to settle", map[string]any{
		"order_id":     id.String(),
		"settle_delay": p.settleDelay.String(),
	})
	p.settle(ctx)

	order, err := p.fetcher.FetchOrder(ctx, id)
	if err != nil {
		res.Err = err
		res.Outcome = OutcomeEnrichmentFailed
		if errs.IsMissingConfiguration(err) {
			res.Outcome = OutcomeMisconfigured
		}
		p.logger.Error(ctx, "order_fetch_failed", "Failed to fetch order "+id.String(), err)
		return res
	}

	res.ActivationCode = orders.ExtractActivationCode(order)
	p.notify(ctx, order, &res)

	res.Outcome = OutcomeDone
	p.logger.Info(ctx, "order_processed", "Order webhook processed", map[string]any{
		"order_id":      id.String(),
		"code_found":    res.ActivationCode != orders.ActivationCodeNotFound,
		"whatsapp_sent": res.WhatsAppSent,
		"email_sent":    res.EmailSent,
		"duration_ms":   time.Since(received).Milliseconds(),
	})
	// the code is a customer secret
	p.logger.Debug(ctx, "activation_code_resolved", "Activation code resolved", map[string]any{
		"order_id":        id.String(),
		"activation_code": res.ActivationCode,
	})
	return res
}

// settle waits for the settle delay, the drain signal or ctx, whichever comes first.
func (p *Pipeline) settle(ctx context.Context) {
	if p.settleDelay <= 0 {
		return
	}
	timer := time.NewTimer(p.settleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-p.draining:
		p.logger.Debug(ctx, "settle_delay_cut", "Shutting down; settle delay cut short", nil)
	case <-ctx.Done():
	}
}

// notify runs both best-effort channels concurrently. Failures are recorded on res
// and logged by the adapters; they never change the outcome.
func (p *Pipeline) notify(ctx context.Context, order *orders.Order, res *Result) {
	var wg sync.WaitGroup

	rawPhone := strings.TrimSpace(order.Billing.Phone)
	if len(rawPhone) > minPhoneLength {
		params := []string{
			order.Billing.FirstName,
			order.ItemNames(),
			order.Total.FormatBRL(),
			res.ActivationCode,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.WhatsAppErr = p.sender.SendTemplate(ctx, rawPhone, OrderTemplate, params)
			res.WhatsAppSent = res.WhatsAppErr == nil
		}()
	} else {
		p.logger.Warn(ctx, "whatsapp_skipped", "Order has no usable billing phone; WhatsApp skipped", map[string]any{
			"order_id": order.ID.String(),
		})
	}

	email := strings.TrimSpace(order.Billing.Email)
	if p.notifier.Configured() && email != "" {
		n := contracts.OrderCompletedNotification{
			Email:          email,
			FirstName:      order.Billing.FirstName,
			ActivationCode: res.ActivationCode,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.EmailErr = p.notifier.NotifyOrderCompleted(ctx, n)
			res.EmailSent = res.EmailErr == nil
			if res.EmailErr != nil {
				p.logger.Error(ctx, "email_automation_failed", "Failed to trigger email automation", res.EmailErr)
			}
		}()
	}

	wg.Wait()
}
