package reminders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargaplay/whatsapp-relay/internal/adapter/whatsapp"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
)

type call struct {
	to, template string
	params       []string
}

type recordingSender struct {
	err   error
	mu    sync.Mutex
	calls []call
}

func (s *recordingSender) SendTemplate(_ context.Context, to, templateName string, params []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{to: to, template: templateName, params: params})
	return s.err
}

func serve(t *testing.T, routes []config.ReminderRoute, sender *recordingSender, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(routes, sender, logger.NewNop()).Register(r)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestReminder_SendsMappedTemplate(t *testing.T) {
	for _, route := range config.DefaultReminders() {
		t.Run(route.Path, func(t *testing.T) {
			sender := &recordingSender{}
			rec := serve(t, config.DefaultReminders(), sender, route.Path, `{"first_name":"Ana","phone":"8499999999","email":"ana@example.com"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, sender.calls, 1)
			assert.Equal(t, route.Template, sender.calls[0].template)
			assert.Equal(t, "8499999999", sender.calls[0].to)
			assert.Equal(t, []string{"Ana"}, sender.calls[0].params)
		})
	}
}

func TestReminder_DefaultsFirstName(t *testing.T) {
	sender := &recordingSender{}
	rec := serve(t, config.DefaultReminders(), sender, "/webhook/expira_hoje", `{"phone":"8499999999"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, []string{"Cliente"}, sender.calls[0].params)
}

func TestReminder_AlwaysOK(t *testing.T) {
	cases := map[string]struct {
		body string
		err  error
	}{
		"malformed body": {body: `{"phone":`},
		"empty body":     {body: ``},
		"send failure":   {body: `{"phone":"8499999999"}`, err: assert.AnError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sender := &recordingSender{err: tc.err}
			rec := serve(t, config.DefaultReminders(), sender, "/webhook/lembrete_27_dias", tc.body)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, sender.calls, 1)
		})
	}
}

func TestReminder_CustomTable(t *testing.T) {
	routes := []config.ReminderRoute{{Path: "/webhook/lembrete_90_dias", Template: "cupom_90"}}
	sender := &recordingSender{}

	rec := serve(t, routes, sender, "/webhook/lembrete_90_dias", `{"first_name":"Bia"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "cupom_90", sender.calls[0].template)

	rec = serve(t, routes, sender, "/webhook/expira_hoje", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReminder_SendSurvivesCancelledRequest(t *testing.T) {
	var hits atomic.Int32
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer graph.Close()

	log := logger.NewNop()
	sender := whatsapp.New(config.WhatsApp{
		BusinessAccountID: "waba", PhoneNumberID: "123", AccessToken: "tok",
		BaseURL: graph.URL, APIVersion: "v20.0", Timeout: time.Second,
	}, log)
	r := chi.NewRouter()
	NewHandler(config.DefaultReminders(), sender, log).Register(r)

	// caller gone or server shutting down before the send starts
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/webhook/expira_hoje", strings.NewReader(`{"first_name":"Ana","phone":"8499999999"}`)).
		WithContext(ctx)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), hits.Load())
}
