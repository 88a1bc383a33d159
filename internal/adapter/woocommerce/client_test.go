package woocommerce

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargaplay/whatsapp-relay/internal/domain/orders"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/errs"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
)

const orderBody = `{
	"id": 812,
	"billing": {"first_name": "Ana", "email": "ana@example.com", "phone": "84998435471"},
	"line_items": [
		{"name": "Assinatura Mensal", "meta_data": [{"key": "license_key", "value": "ABC-123"}]}
	],
	"total": "29.90"
}`

func testConfig(baseURL string) config.WooCommerce {
	return config.WooCommerce{
		BaseURL:        baseURL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        2 * time.Second,
	}
}

func TestFetchOrder_DecodesOrder(t *testing.T) {
	var gotPath, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, orderBody)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), logger.NewNop())
	order, err := client.FetchOrder(context.Background(), orders.ID("812"))
	require.NoError(t, err)

	assert.Equal(t, "/wp-json/wc/v3/orders/812", gotPath)
	assert.Equal(t, "ck_test", gotUser)
	assert.Equal(t, "cs_test", gotPass)

	assert.Equal(t, orders.ID("812"), order.ID)
	assert.Equal(t, "Ana", order.Billing.FirstName)
	assert.Equal(t, "R$ 29,90", order.Total.FormatBRL())
	assert.Equal(t, "ABC-123", orders.ExtractActivationCode(order))
}

func TestFetchOrder_NotFoundIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"woocommerce_rest_shop_order_invalid_id"}`)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), logger.NewNop())
	_, err := client.FetchOrder(context.Background(), orders.ID("999"))
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstreamFetch, errs.KindOf(err))

	var statusErr *errs.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestFetchOrder_BadJSONIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), logger.NewNop())
	_, err := client.FetchOrder(context.Background(), orders.ID("1"))
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstreamFetch, errs.KindOf(err))
}

func TestFetchOrder_MissingConfiguration(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ConsumerSecret = ""
	client := New(cfg, logger.NewNop())

	assert.False(t, client.Configured())
	_, err := client.FetchOrder(context.Background(), orders.ID("1"))
	require.Error(t, err)
	assert.True(t, errs.IsMissingConfiguration(err))
	assert.Contains(t, err.Error(), "WC_CONSUMER_SECRET")
	assert.Zero(t, calls.Load())
}

func TestOrderURL_EscapesID(t *testing.T) {
	client := New(testConfig("https://shop.example.com/"), logger.NewNop())
	assert.Equal(t, "https://shop.example.com/wp-json/wc/v3/orders/a%2Fb", client.OrderURL(orders.ID("a/b")))
}
