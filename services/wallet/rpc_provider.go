package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"moviegate/internal/logger"
)

const (
	// DefaultRPCURL is the local endpoint of the Frame desktop wallet.
	DefaultRPCURL       = "http://127.0.0.1:1248"
	defaultPollInterval = 2 * time.Second
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCProvider talks JSON-RPC 2.0 over HTTP to a wallet that exposes an
// EIP-1193 endpoint. Accounts-changed events are synthesized by polling
// eth_accounts.
type RPCProvider struct {
	endpoint     string
	httpc        *http.Client
	pollInterval time.Duration
	nextID       atomic.Int64

	mu       sync.Mutex
	handler  func([]string)
	last     []string
	primed   bool
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRPCProvider returns a provider for endpoint. A nil httpc uses a client
// with a 10s timeout; pollInterval <= 0 uses 2s.
func NewRPCProvider(endpoint string, httpc *http.Client, pollInterval time.Duration) *RPCProvider {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultRPCURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &RPCProvider{
		endpoint:     endpoint,
		httpc:        httpc,
		pollInterval: pollInterval,
		stop:         make(chan struct{}),
	}
}

// Request performs method and returns the account list from the result.
func (p *RPCProvider) Request(ctx context.Context, method string) ([]string, error) {
	accounts, err := p.call(ctx, method)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.last = slices.Clone(accounts)
	p.primed = true
	p.mu.Unlock()
	return accounts, nil
}

// OnAccountsChanged sets the handler and starts polling on first use.
func (p *RPCProvider) OnAccountsChanged(handler func(accounts []string)) {
	p.mu.Lock()
	start := p.handler == nil
	p.handler = handler
	p.mu.Unlock()
	if start {
		go p.pollLoop()
	}
}

// Close stops the polling goroutine.
func (p *RPCProvider) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *RPCProvider) pollLoop() {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

func (p *RPCProvider) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.pollInterval)
	defer cancel()

	accounts, err := p.call(ctx, MethodAccounts)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("wallet poll failed")
		return
	}

	p.mu.Lock()
	changed := p.primed && !slices.Equal(p.last, accounts)
	p.last = slices.Clone(accounts)
	p.primed = true
	handler := p.handler
	p.mu.Unlock()

	if changed && handler != nil {
		logger.For(ctx).WithField("accounts", len(accounts)).Info("wallet accounts changed")
		handler(accounts)
	}
}

func (p *RPCProvider) call(ctx context.Context, method string) ([]string, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      p.nextID.Add(1),
		Method:  method,
		Params:  []any{},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("rpc %s: HTTP %d: invalid JSON response", method, resp.StatusCode)
	}

	doc := gjson.ParseBytes(raw)
	if rpcErr := doc.Get("error"); rpcErr.Exists() {
		return nil, &ProviderError{
			Code:    int(rpcErr.Get("code").Int()),
			Message: rpcErr.Get("message").String(),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rpc %s: HTTP %d", method, resp.StatusCode)
	}

	result := doc.Get("result")
	if !result.IsArray() {
		return nil, fmt.Errorf("rpc %s: result is not an account list", method)
	}
	accounts := make([]string, 0, len(result.Array()))
	for _, a := range result.Array() {
		accounts = append(accounts, a.String())
	}
	return accounts, nil
}
