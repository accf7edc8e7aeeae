package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope          = "https://graph.microsoft.com/.default"
	maxRelayErrorBody   = 4 << 10
)

// GraphConfig configures the Microsoft Graph sendMail relay.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Sender is the mailbox messages are sent from.
	Sender string
	// TokenURL and BaseURL override the Microsoft endpoints in tests.
	TokenURL string
	BaseURL  string
	// HTTPClient is the transport under the OAuth2 client.
	HTTPClient *http.Client
}

func (c GraphConfig) Enabled() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != "" && c.Sender != ""
}

func (c GraphConfig) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return "https://login.microsoftonline.com/" + url.PathEscape(c.TenantID) + "/oauth2/v2.0/token"
}

// GraphFactory creates one GraphRelay per run.
type GraphFactory struct {
	cfg GraphConfig
}

func NewGraphFactory(cfg GraphConfig) *GraphFactory {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GraphFactory{cfg: cfg}
}

// NewRelay builds a relay with its own client-credentials token source. No
// token is requested until the first Send; after that the token is reused
// until it expires.
func (f *GraphFactory) NewRelay(ctx context.Context) Relay {
	cc := clientcredentials.Config{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		TokenURL:     f.cfg.tokenURL(),
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if f.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.cfg.HTTPClient)
	}
	return &GraphRelay{
		client:   oauth2.NewClient(ctx, cc.TokenSource(ctx)),
		endpoint: f.cfg.BaseURL + "/users/" + url.PathEscape(f.cfg.Sender) + "/sendMail",
		sender:   f.cfg.Sender,
	}
}

// GraphRelay sends mail through Microsoft Graph.
type GraphRelay struct {
	client   *http.Client
	endpoint string
	sender   string
}

type graphAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

func address(a string) graphAddress {
	var g graphAddress
	g.EmailAddress.Address = a
	return g
}

type graphSendMail struct {
	Message struct {
		Subject string `json:"subject"`
		Body    struct {
			ContentType string `json:"contentType"`
			Content     string `json:"content"`
		} `json:"body"`
		From         graphAddress   `json:"from"`
		ToRecipients []graphAddress `json:"toRecipients"`
	} `json:"message"`
	SaveToSentItems bool `json:"saveToSentItems"`
}

func (r *GraphRelay) Send(ctx context.Context, msg Message) error {
	var body graphSendMail
	body.Message.Subject = msg.Subject
	body.Message.Body.ContentType = "HTML"
	body.Message.Body.Content = msg.HTML
	body.Message.From = address(r.sender)
	body.Message.ToRecipients = []graphAddress{address(msg.To)}
	body.SaveToSentItems = true

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal sendMail: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendMail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxRelayErrorBody))
		return fmt.Errorf("sendMail status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

var (
	_ RelayFactory = (*GraphFactory)(nil)
	_ Relay        = (*GraphRelay)(nil)
)
