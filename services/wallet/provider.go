package wallet

import (
	"context"
	"sync"
)

// Wallet provider request methods.
const (
	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
)

// Provider is the injected wallet capability (an EIP-1193 style provider).
type Provider interface {
	// Request performs an account query. MethodAccounts never prompts the user;
	// MethodRequestAccounts may.
	Request(ctx context.Context, method string) ([]string, error)
	// OnAccountsChanged registers a handler invoked with the new account list
	// whenever the provider's active accounts change.
	OnAccountsChanged(handler func(accounts []string))
}

// StaticProvider replays what a browser-side wallet reported. The HTTP surface
// builds one per request from the frontend's payload.
type StaticProvider struct {
	mu       sync.Mutex
	accounts []string
	err      error
	handler  func([]string)
}

// NewStaticProvider returns a provider that answers every request with
// accounts, or with err when err is non-nil.
func NewStaticProvider(accounts []string, err error) *StaticProvider {
	return &StaticProvider{accounts: append([]string(nil), accounts...), err: err}
}

func (p *StaticProvider) Request(_ context.Context, _ string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return append([]string(nil), p.accounts...), nil
}

func (p *StaticProvider) OnAccountsChanged(handler func(accounts []string)) {
	p.mu.Lock()
	p.handler = handler
	p.mu.Unlock()
}

// Emit replaces the account list and notifies the registered handler.
func (p *StaticProvider) Emit(accounts []string) {
	p.mu.Lock()
	p.accounts = append([]string(nil), accounts...)
	p.err = nil
	handler := p.handler
	p.mu.Unlock()
	if handler != nil {
		handler(append([]string(nil), accounts...))
	}
}
