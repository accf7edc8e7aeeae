package directory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"memberlink/internal/identity/models"
	"memberlink/pkg/platform/sentinel"
)

// FaultFunc lets tests fail a specific operation for a specific email.
// op is one of "list", "create", "update", "generate_link".
type FaultFunc func(op, email string) error

// InMemory is a process-local directory used by tests, the e2e suite, and the
// mock directory server. Accounts keep insertion order.
type InMemory struct {
	mu       sync.RWMutex
	accounts []*models.AuthAccount
	byEmail  map[string]*models.AuthAccount
	siteURL  string
	fault    FaultFunc
	now      func() time.Time
}

type InMemoryOption func(*InMemory)

func WithFault(f FaultFunc) InMemoryOption {
	return func(d *InMemory) {
		d.fault = f
	}
}

func WithClock(now func() time.Time) InMemoryOption {
	return func(d *InMemory) {
		d.now = now
	}
}

// WithLinkBase sets the host used in generated action links.
func WithLinkBase(base string) InMemoryOption {
	return func(d *InMemory) {
		d.siteURL = base
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	d := &InMemory{
		byEmail: make(map[string]*models.AuthAccount),
		siteURL: "http://directory.local",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed inserts accounts as-is, assigning ids where missing.
func (d *InMemory) Seed(accounts ...models.AuthAccount) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range accounts {
		acc := a
		if acc.ID == "" {
			acc.ID = uuid.NewString()
		}
		acc.Email = models.NormalizeEmail(acc.Email)
		if acc.CreatedAt.IsZero() {
			acc.CreatedAt = d.now()
		}
		d.insertLocked(&acc)
	}
}

// Snapshot returns deep copies of all accounts in insertion order.
func (d *InMemory) Snapshot() []models.AuthAccount {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.AuthAccount, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, cloneAccount(a))
	}
	return out
}

func (d *InMemory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.accounts)
}

func (d *InMemory) ListAccounts(_ context.Context, page, perPage int) ([]models.AuthAccount, error) {
	if err := d.check("list", ""); err != nil {
		return nil, err
	}
	if page < 1 || perPage < 1 {
		return nil, fmt.Errorf("%w: page and per_page must be positive", sentinel.ErrInvalidInput)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := (page - 1) * perPage
	if start >= len(d.accounts) {
		return []models.AuthAccount{}, nil
	}
	end := min(start+perPage, len(d.accounts))
	out := make([]models.AuthAccount, 0, end-start)
	for _, a := range d.accounts[start:end] {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (d *InMemory) CreateAccount(_ context.Context, params CreateAccountParams) (*models.AuthAccount, error) {
	email := models.NormalizeEmail(params.Email)
	if err := d.check("create", email); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", sentinel.ErrInvalidInput)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byEmail[email]; exists {
		return nil, fmt.Errorf("%w: a user with this email address has already been registered", sentinel.ErrAlreadyUsed)
	}
	now := d.now()
	acc := &models.AuthAccount{
		ID:           uuid.NewString(),
		Email:        email,
		CreatedAt:    now,
		UserMetadata: maps.Clone(params.UserMetadata),
		AppMetadata:  maps.Clone(params.AppMetadata),
	}
	if params.EmailConfirm {
		acc.ConfirmedAt = &now
	}
	d.insertLocked(acc)
	out := cloneAccount(acc)
	return &out, nil
}

func (d *InMemory) UpdateUserMetadata(_ context.Context, accountID string, meta map[string]any) (*models.AuthAccount, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.accounts {
		if a.ID != accountID {
			continue
		}
		if err := d.check("update", a.Email); err != nil {
			return nil, err
		}
		a.UserMetadata = maps.Clone(meta)
		out := cloneAccount(a)
		return &out, nil
	}
	return nil, fmt.Errorf("%w: account %s", sentinel.ErrNotFound, accountID)
}

func (d *InMemory) GenerateLink(_ context.Context, params GenerateLinkParams) (*ActionLink, error) {
	email := models.NormalizeEmail(params.Email)
	if err := d.check("generate_link", email); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	acc, exists := d.byEmail[email]
	switch params.Kind {
	case models.LinkInvite:
		now := d.now()
		if exists && acc.IsConfirmed() {
			return nil, fmt.Errorf("%w: a user with this email address has already been registered", sentinel.ErrAlreadyUsed)
		}
		if !exists {
			acc = &models.AuthAccount{
				ID:           uuid.NewString(),
				Email:        email,
				CreatedAt:    now,
				UserMetadata: maps.Clone(params.Data),
			}
			d.insertLocked(acc)
		}
		acc.InvitedAt = &now
	case models.LinkRecovery:
		if !exists {
			return nil, fmt.Errorf("%w: user with this email not found", sentinel.ErrNotFound)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported link type %q", sentinel.ErrInvalidInput, params.Kind)
	}

	link := fmt.Sprintf("%s/auth/v1/verify?token=%s&type=%s", d.siteURL, uuid.NewString(), params.Kind)
	if params.RedirectTo != "" {
		link += "&redirect_to=" + params.RedirectTo
	}
	return &ActionLink{URL: link, Account: cloneAccount(acc)}, nil
}

func (d *InMemory) check(op, email string) error {
	if d.fault == nil {
		return nil
	}
	return d.fault(op, email)
}

func (d *InMemory) insertLocked(acc *models.AuthAccount) {
	d.accounts = append(d.accounts, acc)
	if acc.Email != "" {
		if _, exists := d.byEmail[acc.Email]; !exists {
			d.byEmail[acc.Email] = acc
		}
	}
}

func cloneAccount(a *models.AuthAccount) models.AuthAccount {
	out := *a
	out.UserMetadata = maps.Clone(a.UserMetadata)
	out.AppMetadata = maps.Clone(a.AppMetadata)
	if a.ConfirmedAt != nil {
		t := *a.ConfirmedAt
		out.ConfirmedAt = &t
	}
	if a.InvitedAt != nil {
		t := *a.InvitedAt
		out.InvitedAt = &t
	}
	return out
}

var _ Directory = (*InMemory)(nil)
