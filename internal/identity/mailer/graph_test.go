package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	tokenCalls atomic.Int32
	mailCalls  atomic.Int32
	lastBody   graphSendMail
	lastAuth   string
	failStatus int
}

func (f *fakeGraph) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tenant/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, graphScope, r.PostForm.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"graph-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("POST /v1.0/users/{sender}/sendMail", func(w http.ResponseWriter, r *http.Request) {
		f.mailCalls.Add(1)
		f.lastAuth = r.Header.Get("Authorization")
		assert.Equal(t, "noreply@example.org", r.PathValue("sender"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastBody))
		if f.failStatus != 0 {
			w.WriteHeader(f.failStatus)
			_, _ = w.Write([]byte(`{"error":{"code":"ErrorQuotaExceeded"}}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}

func newFactory(srvURL string) *GraphFactory {
	return NewGraphFactory(GraphConfig{
		TenantID:     "tenant",
		ClientID:     "client-id",
		ClientSecret: "secret",
		Sender:       "noreply@example.org",
		TokenURL:     srvURL + "/tenant/oauth2/v2.0/token",
		BaseURL:      srvURL + "/v1.0/",
	})
}

func TestGraphRelayReusesTokenWithinRun(t *testing.T) {
	fake := &fakeGraph{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	relay := newFactory(srv.URL).NewRelay(context.Background())
	assert.EqualValues(t, 0, fake.tokenCalls.Load(), "token is fetched lazily")

	for _, to := range []string{"a@example.com", "b@example.com"} {
		require.NoError(t, relay.Send(context.Background(), Message{To: to, Subject: "Hi", HTML: "<p>x</p>"}))
	}
	assert.EqualValues(t, 1, fake.tokenCalls.Load())
	assert.EqualValues(t, 2, fake.mailCalls.Load())
	assert.Equal(t, "Bearer graph-token", fake.lastAuth)

	body := fake.lastBody
	assert.Equal(t, "Hi", body.Message.Subject)
	assert.Equal(t, "HTML", body.Message.Body.ContentType)
	assert.Equal(t, "noreply@example.org", body.Message.From.EmailAddress.Address)
	require.Len(t, body.Message.ToRecipients, 1)
	assert.Equal(t, "b@example.com", body.Message.ToRecipients[0].EmailAddress.Address)
	assert.True(t, body.SaveToSentItems)
}

func TestGraphRelayReportsStatus(t *testing.T) {
	fake := &fakeGraph{failStatus: http.StatusTooManyRequests}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	err := newFactory(srv.URL).NewRelay(context.Background()).Send(context.Background(), Message{To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "ErrorQuotaExceeded")
}

func TestGraphConfig(t *testing.T) {
	cfg := GraphConfig{TenantID: "t-1", ClientID: "c", ClientSecret: "s", Sender: "x@example.org"}
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "https://login.microsoftonline.com/t-1/oauth2/v2.0/token", cfg.tokenURL())
	assert.False(t, GraphConfig{TenantID: "t"}.Enabled())
}
