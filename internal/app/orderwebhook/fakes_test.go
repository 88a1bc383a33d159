package orderwebhook

import (
	"context"
	"sync"

	"github.com/cargaplay/whatsapp-relay/internal/domain/orders"
	"github.com/cargaplay/whatsapp-relay/internal/shared/contracts"
	"github.com/cargaplay/whatsapp-relay/internal/shared/errs"
)

type fakeFetcher struct {
	configured bool
	order      *orders.Order
	err        error

	mu    sync.Mutex
	calls []orders.ID
}

func (f *fakeFetcher) Configured() bool { return f.configured }

func (f *fakeFetcher) FetchOrder(_ context.Context, id orders.ID) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type sentTemplate struct {
	To       string
	Template string
	Params   []string
}

type fakeSender struct {
	err error

	mu   sync.Mutex
	sent []sentTemplate
}

func (f *fakeSender) SendTemplate(_ context.Context, to, templateName string, params []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentTemplate{To: to, Template: templateName, Params: params})
	return f.err
}

func (f *fakeSender) messages() []sentTemplate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentTemplate(nil), f.sent...)
}

type fakeNotifier struct {
	configured bool
	err        error

	mu    sync.Mutex
	calls []contracts.OrderCompletedNotification
}

func (f *fakeNotifier) Configured() bool { return f.configured }

func (f *fakeNotifier) NotifyOrderCompleted(_ context.Context, n contracts.OrderCompletedNotification) error {
	if !f.configured {
		return errs.MissingConfiguration("fake")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, n)
	return f.err
}

func (f *fakeNotifier) notifications() []contracts.OrderCompletedNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contracts.OrderCompletedNotification(nil), f.calls...)
}
