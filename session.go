package provenance

import (
	"context"
	"fmt"
	"sync"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/registry"
	"github.com/veralith/provenance/royalty"
	"github.com/veralith/provenance/usage"
)

// Mode is the capability level of a session.
type Mode int

const (
	// ModeReadOnly can query remote state but cannot submit writes.
	ModeReadOnly Mode = iota
	// ModeSigning can submit state-changing operations on behalf of an
	// account.
	ModeSigning
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "read-only"
	case ModeSigning:
		return "signing"
	default:
		return "unknown"
	}
}

// Capability describes what the current session is allowed to do and on
// whose behalf. A read-only capability carries no account.
type Capability struct {
	Mode    Mode
	Account string
}

// CanSign reports whether the capability authorizes writes.
func (c Capability) CanSign() bool {
	return c.Mode == ModeSigning && c.Account != ""
}

// Approver acquires signing capability interactively, typically by
// prompting an external wallet or operator. Approve returns the account
// identity the user granted.
type Approver interface {
	Approve(ctx context.Context) (account string, err error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context) (string, error)

// Approve implements Approver.
func (f ApproverFunc) Approve(ctx context.Context) (string, error) {
	return f(ctx)
}

// Credential is a non-interactive signing identity for service and test
// use.
type Credential struct {
	Account string
	Secret  string
}

// Services is the set of remote surfaces a session binds to. A dialer
// returns a Services value scoped to one capability; the backend decides
// what the capability means on its side.
type Services struct {
	Registry registry.Service
	Royalty  royalty.Service
	Usage    usage.Service
	Chain    chain.Adapter
}

// ServiceDialer creates capability-bound service handles. Implemented by
// backends such as the devnet package.
type ServiceDialer interface {
	Dial(ctx context.Context, cap Capability) (Services, error)
}

// bindings is one immutable generation of session state. Every session
// transition builds a fresh bindings value and swaps the pointer; an
// operation that already holds a generation keeps using it.
type bindings struct {
	capability Capability
	registry   *RegistryClient
	royalty    *RoyaltyEngine
	usage      *UsageAggregator
	chain      chain.Adapter
}

// Session manages the connection lifecycle and the client bindings that
// hang off it. There is exactly one Session per Client.
type Session struct {
	client *Client

	id         id.SessionID
	approver   Approver
	credential *Credential

	mu      sync.Mutex
	current *bindings

	// seen outlives every binding generation so duplicate suppression
	// holds across disconnects and reconnects.
	seen *usage.SeenSet
}

func newSession(c *Client, approver Approver, credential *Credential) (*Session, error) {
	if approver != nil && credential != nil {
		return nil, fmt.Errorf("%w: both approver and credential configured", ErrInvalidSession)
	}
	return &Session{
		client:     c,
		id:         id.NewSessionID(),
		approver:   approver,
		credential: credential,
		seen:       usage.NewSeenSet(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() id.SessionID { return s.id }

// Capability returns the capability of the current binding generation.
func (s *Session) Capability() Capability {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Capability{Mode: ModeReadOnly}
	}
	return s.current.capability
}

// Connected reports whether the session holds signing capability.
func (s *Session) Connected() bool {
	return s.Capability().CanSign()
}

// Connect acquires signing capability and rebinds the clients. It is
// idempotent: reconnecting with the same account keeps the current
// bindings, while a different account is treated as a fresh connect and
// produces a new generation.
//
// With a credential the account is known without interaction, so a
// repeat connect skips identity derivation entirely. An approver is
// re-invoked on every connect; that is how an account switch is
// observed.
func (s *Session) Connect(ctx context.Context) error {
	if s.credential != nil {
		s.mu.Lock()
		if s.current != nil && s.current.capability.CanSign() && s.current.capability.Account == s.credential.Account {
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
	}

	account, err := s.acquire(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.capability.CanSign() && s.current.capability.Account == account {
		return nil
	}

	next, err := s.client.bind(ctx, Capability{Mode: ModeSigning, Account: account}, s.seen)
	if err != nil {
		return err
	}
	s.current = next

	s.client.logger.Info("session connected", "session_id", s.id, "account", account)
	s.client.plugins.EmitSessionConnected(ctx, account)
	return nil
}

func (s *Session) acquire(ctx context.Context) (string, error) {
	switch {
	case s.credential != nil:
		if s.credential.Account == "" {
			return "", fmt.Errorf("%w: credential has no account", ErrInvalidSession)
		}
		return s.credential.Account, nil
	case s.approver != nil:
		account, err := s.approver.Approve(ctx)
		if err != nil {
			return "", fmt.Errorf("provenance: approval failed: %w", err)
		}
		if account == "" {
			return "", fmt.Errorf("%w: approver returned empty account", ErrInvalidSession)
		}
		return account, nil
	default:
		return "", fmt.Errorf("%w: no approver or credential configured", ErrInvalidSession)
	}
}

// Disconnect drops signing capability and rebinds to read-only. Calling
// it while already disconnected is a no-op: the existing binding (or the
// lazy read-only default) is kept and no dial happens, so it never
// returns an error for that case.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || !s.current.capability.CanSign() {
		return nil
	}
	account := s.current.capability.Account

	next, err := s.client.bind(ctx, Capability{Mode: ModeReadOnly}, s.seen)
	if err != nil {
		return err
	}
	s.current = next

	s.client.logger.Info("session disconnected", "session_id", s.id, "account", account)
	s.client.plugins.EmitSessionDisconnected(ctx, account)
	return nil
}

// binding returns the current generation, binding read-only lazily on
// first use.
func (s *Session) binding(ctx context.Context) (*bindings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		next, err := s.client.bind(ctx, Capability{Mode: ModeReadOnly}, s.seen)
		if err != nil {
			return nil, err
		}
		s.current = next
	}
	return s.current, nil
}
