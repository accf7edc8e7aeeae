package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"memberlink/internal/audit"
	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/directory/directorytest"
	"memberlink/internal/identity/handler"
	"memberlink/internal/identity/mailer"
	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/principal"
	"memberlink/internal/identity/reconcile"
	"memberlink/internal/identity/registry"
	"memberlink/internal/identity/runlock"
	"memberlink/internal/platform/middleware"
	"memberlink/internal/platform/tracer"
)

const (
	jwtSecret       = "e2e-directory-jwt-secret"
	serviceKey      = "e2e-service-key"
	migrationSecret = "e2e-migration-secret"
)

var (
	secretHashOnce sync.Once
	secretHash     string
	secretHashErr  error
)

func migrationSecretHash() (string, error) {
	secretHashOnce.Do(func() {
		secretHash, secretHashErr = principal.HashMigrationSecret(migrationSecret)
	})
	return secretHash, secretHashErr
}

// captureRelay records delivered messages instead of sending them.
type captureRelay struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (r *captureRelay) NewRelay(context.Context) mailer.Relay {
	return r
}

func (r *captureRelay) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *captureRelay) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

// TestContext holds one scenario's in-process environment and the last response.
type TestContext struct {
	Directory *directory.InMemory
	Registry  *registry.InMemory
	Relay     *captureRelay
	History   *mailer.InMemoryHistory

	relayConfigured bool
	authHeader      string

	directoryServer *httptest.Server
	server          *httptest.Server
	HTTPClient      *http.Client

	LastResponse     *http.Response
	LastResponseBody []byte
}

func NewTestContext() *TestContext {
	return &TestContext{
		Directory:       directory.NewInMemory(),
		Registry:        registry.NewInMemory(),
		Relay:           &captureRelay{},
		History:         mailer.NewInMemoryHistory(),
		relayConfigured: true,
		HTTPClient:      &http.Client{Timeout: 10 * time.Second},
	}
}

// ensureServer builds the sync server on first use so Given steps can
// still change the environment.
func (tc *TestContext) ensureServer() error {
	if tc.server != nil {
		return nil
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	t := tracer.NewNoop()

	tc.directoryServer = directorytest.NewServer(tc.Directory, serviceKey)
	client := directory.NewClient(tc.directoryServer.URL, serviceKey)
	scanner := directory.NewScanner(client, directory.WithPageSize(2), directory.WithLogger(log))

	var factory mailer.RelayFactory
	if tc.relayConfigured {
		factory = tc.Relay
	}
	templates, err := mailer.NewTemplates("E2E Association")
	if err != nil {
		return err
	}
	mail := mailer.NewService(factory, templates,
		mailer.WithHistory(tc.History),
		mailer.WithSendDelay(0),
		mailer.WithLogger(log),
	)
	publisher := audit.NewPublisher(audit.NewInMemoryStore())

	reconciler, err := reconcile.New(scanner, registry.NewLoader(tc.Registry, t), tc.Registry, client, mail,
		reconcile.WithConfig(reconcile.Config{RedirectURL: "http://portal.test/auth/callback", RunTimeout: 5 * time.Second}),
		reconcile.WithAuditPublisher(publisher),
		reconcile.WithLogger(log),
	)
	if err != nil {
		return err
	}
	migrator, err := migrate.New(scanner, client, mail,
		migrate.WithConfig(migrate.Config{RedirectURL: "http://portal.test/auth/callback", RunTimeout: 5 * time.Second}),
		migrate.WithAuditPublisher(publisher),
		migrate.WithLogger(log),
	)
	if err != nil {
		return err
	}

	hash, err := migrationSecretHash()
	if err != nil {
		return err
	}
	secret, err := principal.NewMigrationSecret(hash)
	if err != nil {
		return err
	}
	resolver := principal.NewResolver(principal.NewTokenVerifier(jwtSecret), principal.WithMigrationSecret(secret))

	h := handler.New(reconciler, migrator, resolver, runlock.NewInMemory(), handler.WithLogger(log))
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ContentTypeJSON)
	h.Register(r)
	tc.server = httptest.NewServer(r)
	return nil
}

func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.directoryServer != nil {
		tc.directoryServer.Close()
	}
}

// POST sends body as JSON with the current credentials.
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(data))
}

// GET sends a request without a body.
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	if err := tc.ensureServer(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.server.URL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.authHeader != "" {
		req.Header.Set("Authorization", tc.authHeader)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField walks a dotted path, with numeric segments indexing arrays.
func (tc *TestContext) GetResponseField(path string) (any, error) {
	var current any
	if err := json.Unmarshal(tc.LastResponseBody, &current); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in response", path)
			}
			current = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %q", part, path)
			}
			current = node[i]
		default:
			return nil, fmt.Errorf("field %q not found in response", path)
		}
	}
	return current, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
