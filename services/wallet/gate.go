// Package wallet implements the wallet gateway in front of the catalog.
//
// The gate is presentation-only: an address string returned by the provider is
// taken as access. No signature, nonce challenge or server-side verification
// is performed, so it must not be relied on as a security boundary.
package wallet

import (
	"context"
	"errors"
	"sync"

	"moviegate/internal/logger"
	"moviegate/internal/metrics"
)

// Gate asks an injected Provider for an account.
type Gate struct {
	provider Provider

	mu         sync.Mutex
	subscribed bool
}

// NewGate wraps p. A nil provider means no wallet is installed.
func NewGate(p Provider) *Gate {
	return &Gate{provider: p}
}

// Available reports whether a provider was detected.
func (g *Gate) Available() bool {
	return g.provider != nil
}

// CheckExistingSession returns the first already-authorized account without
// prompting. Provider absence and failures are logged and reported as absent.
func (g *Gate) CheckExistingSession(ctx context.Context) (string, bool) {
	if g.provider == nil {
		logger.For(ctx).Debug("no wallet provider; skipping existing session check")
		return "", false
	}
	accounts, err := g.provider.Request(ctx, MethodAccounts)
	if err != nil {
		logger.For(ctx).WithError(err).Warn("wallet eth_accounts failed")
		return "", false
	}
	if len(accounts) == 0 {
		return "", false
	}
	return accounts[0], true
}

// RequestConnection prompts the user through the provider and returns the first
// account. Errors are ErrProviderUnavailable, ErrUserRejected, ErrNoAccounts or
// an *UnknownError.
func (g *Gate) RequestConnection(ctx context.Context) (string, error) {
	if g.provider == nil {
		metrics.WalletConnectionsTotal.WithLabelValues("unavailable").Inc()
		return "", ErrProviderUnavailable
	}

	accounts, err := g.provider.Request(ctx, MethodRequestAccounts)
	if err != nil {
		classified := classify(err)
		metrics.WalletConnectionsTotal.WithLabelValues(resultLabel(classified)).Inc()
		if _, unknown := classified.(*UnknownError); unknown {
			logger.For(ctx).WithError(err).Error("wallet connection failed")
		}
		return "", classified
	}
	if len(accounts) == 0 {
		metrics.WalletConnectionsTotal.WithLabelValues("no_accounts").Inc()
		return "", ErrNoAccounts
	}
	metrics.WalletConnectionsTotal.WithLabelValues("connected").Inc()
	return accounts[0], nil
}

// OnAccountsChanged registers the single accounts-changed subscription. The
// handler receives the new first account, or ok=false when the list is empty.
// There is no unsubscribe; the subscription lives as long as the provider.
func (g *Gate) OnAccountsChanged(handler func(address string, ok bool)) error {
	if g.provider == nil {
		return ErrProviderUnavailable
	}
	g.mu.Lock()
	if g.subscribed {
		g.mu.Unlock()
		return ErrAlreadySubscribed
	}
	g.subscribed = true
	g.mu.Unlock()

	g.provider.OnAccountsChanged(func(accounts []string) {
		if len(accounts) == 0 {
			handler("", false)
			return
		}
		handler(accounts[0], true)
	})
	return nil
}

func classify(err error) error {
	if errors.Is(err, ErrProviderUnavailable) {
		return ErrProviderUnavailable
	}
	var perr *ProviderError
	if errors.As(err, &perr) && perr.Code == CodeUserRejected {
		return ErrUserRejected
	}
	return &UnknownError{Err: err}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, ErrUserRejected):
		return "rejected"
	case errors.Is(err, ErrNoAccounts):
		return "no_accounts"
	default:
		return "unknown"
	}
}
