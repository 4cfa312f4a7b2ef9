package wallet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func rpcServer(t *testing.T, handle func(method string) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad rpc request: %v", err)
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("jsonrpc = %q", req.JSONRPC)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, handle(req.Method))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRPCProviderRequestAccounts(t *testing.T) {
	srv := rpcServer(t, func(method string) string {
		if method != MethodRequestAccounts {
			t.Errorf("method = %q", method)
		}
		return `{"jsonrpc":"2.0","id":1,"result":["0xabc","0xdef"]}`
	})

	accounts, err := NewRPCProvider(srv.URL, srv.Client(), time.Second).Request(context.Background(), MethodRequestAccounts)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if len(accounts) != 2 || accounts[0] != "0xabc" {
		t.Fatalf("accounts = %v", accounts)
	}
}

func TestRPCProviderRejectionThroughGate(t *testing.T) {
	srv := rpcServer(t, func(string) string {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":4001,"message":"User rejected the request."}}`
	})

	gate := NewGate(NewRPCProvider(srv.URL, srv.Client(), time.Second))
	if _, err := gate.RequestConnection(context.Background()); err != ErrUserRejected {
		t.Fatalf("err = %v, want ErrUserRejected", err)
	}
}

func TestRPCProviderUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gate := NewGate(NewRPCProvider(url, nil, time.Second))
	if _, err := gate.RequestConnection(context.Background()); err != ErrProviderUnavailable {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestRPCProviderRejectsNonListResult(t *testing.T) {
	srv := rpcServer(t, func(string) string { return `{"jsonrpc":"2.0","id":1,"result":"0xabc"}` })

	if _, err := NewRPCProvider(srv.URL, srv.Client(), time.Second).Request(context.Background(), MethodAccounts); err == nil {
		t.Fatal("expected error for non-list result")
	}
}

func TestRPCProviderPollsForAccountChanges(t *testing.T) {
	var mu sync.Mutex
	current := `["0xabc"]`
	srv := rpcServer(t, func(string) string {
		mu.Lock()
		defer mu.Unlock()
		return `{"jsonrpc":"2.0","id":1,"result":` + current + `}`
	})

	provider := NewRPCProvider(srv.URL, srv.Client(), 10*time.Millisecond)
	defer provider.Close()

	if _, err := provider.Request(context.Background(), MethodAccounts); err != nil {
		t.Fatalf("Request error: %v", err)
	}

	changed := make(chan []string, 1)
	provider.OnAccountsChanged(func(accounts []string) {
		select {
		case changed <- accounts:
		default:
		}
	})

	mu.Lock()
	current = `[]`
	mu.Unlock()

	select {
	case accounts := <-changed:
		if len(accounts) != 0 {
			t.Fatalf("accounts = %v, want empty", accounts)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no accounts-changed event")
	}
}
