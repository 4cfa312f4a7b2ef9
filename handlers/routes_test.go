package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moviegate/services/metadata"
	"moviegate/services/sessions"
)

const testAccount = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

type apiClient struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	store := sessions.NewService(metadata.NewClient(""), time.Hour)
	t.Cleanup(store.Close)
	return &apiClient{t: t, router: NewAPIRouter(store, RouterOptions{})}
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.168.1.20:5555"
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *apiClient) openSession() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		c.t.Fatalf("create session: expected 201, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		c.t.Fatalf("decode session: %v", err)
	}
	c.token = body["token"]
}

func (c *apiClient) connect() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/wallet/connect", map[string]any{"accounts": []string{testAccount}})
	if rec.Code != http.StatusOK {
		c.t.Fatalf("connect: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func decodeCatalog(t *testing.T, rec *httptest.ResponseRecorder) catalogResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp catalogResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	return resp
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestAPI_RequiresSession(t *testing.T) {
	c := newAPIClient(t)

	if rec := c.do(http.MethodGet, "/api/wallet", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	c.token = "00000000-0000-0000-0000-000000000000"
	if rec := c.do(http.MethodGet, "/api/catalog", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestAPI_CatalogRequiresWallet(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()

	rec := c.do(http.MethodGet, "/api/catalog", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before connecting, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "wallet connection required" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestAPI_ConnectFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		status int
		msg    string
	}{
		{
			name:   "no provider",
			body:   map[string]any{"available": false},
			status: http.StatusServiceUnavailable,
			msg:    "MetaMask not detected! Please install the extension.",
		},
		{
			name:   "user rejected",
			body:   map[string]any{"error": map[string]any{"code": 4001, "message": "User rejected the request."}},
			status: http.StatusUnauthorized,
			msg:    "Connection rejected by user.",
		},
		{
			name:   "no accounts",
			body:   map[string]any{"accounts": []string{}},
			status: http.StatusUnauthorized,
			msg:    "No accounts found. Please unlock MetaMask.",
		},
		{
			name:   "other provider error",
			body:   map[string]any{"error": map[string]any{"code": -32002, "message": "Request already pending"}},
			status: http.StatusBadGateway,
			msg:    "Failed to connect. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newAPIClient(t)
			c.openSession()

			rec := c.do(http.MethodPost, "/api/wallet/connect", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if msg := errorMessage(t, rec); msg != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, msg)
			}

			var wallet walletResponse
			rec = c.do(http.MethodGet, "/api/wallet", nil)
			_ = json.NewDecoder(rec.Body).Decode(&wallet)
			if wallet.Connected {
				t.Fatal("wallet must stay disconnected after a failed connect")
			}
		})
	}
}

func TestAPI_ConnectLoadsPopular(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()

	rec := c.do(http.MethodPost, "/api/wallet/connect", map[string]any{"accounts": []string{testAccount}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var wallet walletResponse
	if err := json.NewDecoder(rec.Body).Decode(&wallet); err != nil {
		t.Fatalf("decode wallet: %v", err)
	}
	if !wallet.Connected || wallet.ShortAddress != "0x5aae...eaed" {
		t.Fatalf("unexpected wallet %+v", wallet)
	}
	if wallet.DisplayAddress != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Fatalf("unexpected display address %q", wallet.DisplayAddress)
	}

	resp := decodeCatalog(t, c.do(http.MethodGet, "/api/catalog", nil))
	if len(resp.Results) != 6 || resp.Page != 1 || !resp.CanLoadMore {
		t.Fatalf("unexpected catalog %+v", resp)
	}
	if !strings.HasPrefix(resp.Results[0].PosterURL, "https://image.tmdb.org/t/p/w500/") {
		t.Fatalf("unexpected poster url %q", resp.Results[0].PosterURL)
	}
}

func TestAPI_RestoreExistingSession(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()

	var wallet walletResponse
	rec := c.do(http.MethodPost, "/api/wallet/restore", map[string]any{"accounts": []string{}})
	_ = json.NewDecoder(rec.Body).Decode(&wallet)
	if rec.Code != http.StatusOK || wallet.Connected {
		t.Fatalf("expected disconnected 200, got %d %+v", rec.Code, wallet)
	}

	rec = c.do(http.MethodPost, "/api/wallet/restore", map[string]any{"accounts": []string{testAccount}})
	_ = json.NewDecoder(rec.Body).Decode(&wallet)
	if !wallet.Connected {
		t.Fatal("expected restored session")
	}
	if resp := decodeCatalog(t, c.do(http.MethodGet, "/api/catalog", nil)); len(resp.Results) != 6 {
		t.Fatalf("expected popular list loaded, got %d", len(resp.Results))
	}
}

func TestAPI_SearchPagingAndSelection(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()
	c.connect()

	resp := decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/search", map[string]string{"query": "inception"}))
	if len(resp.Results) != 1 || resp.Results[0].Title != "Inception" || resp.ActiveQuery != "inception" {
		t.Fatalf("unexpected search result %+v", resp)
	}

	resp = decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/more", nil))
	if resp.Page != 2 || len(resp.Results) != 2 {
		t.Fatalf("expected appended page 2, got page %d with %d results", resp.Page, len(resp.Results))
	}

	resp = decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/search", map[string]string{"query": "  "}))
	if resp.ActiveQuery != "" || resp.Page != 1 || len(resp.Results) != 6 {
		t.Fatalf("blank search should reload popular page 1, got %+v", resp)
	}

	resp = decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/select", map[string]int{"id": 4}))
	if resp.Selected == nil || resp.Selected.Title != "Parasite" || resp.Selected.Year != "2019" {
		t.Fatalf("unexpected selection %+v", resp.Selected)
	}

	if rec := c.do(http.MethodPost, "/api/catalog/select", map[string]int{"id": 999}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown selection, got %d", rec.Code)
	}

	resp = decodeCatalog(t, c.do(http.MethodDelete, "/api/catalog/select", nil))
	if resp.Selected != nil {
		t.Fatal("expected selection cleared")
	}

	resp = decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/popular", map[string]int{"page": 1}))
	if len(resp.Results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(resp.Results))
	}
}

func TestAPI_LoadMoreWithoutResults(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()
	c.connect()

	decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/search", map[string]string{"query": "zzz-no-match"}))
	if rec := c.do(http.MethodPost, "/api/catalog/more", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAPI_Details(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()
	c.connect()

	rec := c.do(http.MethodGet, "/api/catalog/details/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var movie movieView
	if err := json.NewDecoder(rec.Body).Decode(&movie); err != nil {
		t.Fatalf("decode movie: %v", err)
	}
	if movie.Title != "Inception" || movie.Rating == "" {
		t.Fatalf("unexpected movie %+v", movie)
	}

	if rec := c.do(http.MethodGet, "/api/catalog/details/999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAPI_AccountsChanged(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()
	c.connect()

	other := "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"
	var wallet walletResponse
	rec := c.do(http.MethodPost, "/api/wallet/accounts-changed", map[string]any{"accounts": []string{other}})
	_ = json.NewDecoder(rec.Body).Decode(&wallet)
	if wallet.Address != other {
		t.Fatalf("expected switched account, got %+v", wallet)
	}

	rec = c.do(http.MethodPost, "/api/wallet/accounts-changed", map[string]any{"accounts": []string{}})
	_ = json.NewDecoder(rec.Body).Decode(&wallet)
	if wallet.Connected {
		t.Fatal("expected disconnected wallet")
	}
	if rec := c.do(http.MethodGet, "/api/catalog", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after disconnect, got %d", rec.Code)
	}

	// Later changes in the same session keep being applied.
	rec = c.do(http.MethodPost, "/api/wallet/accounts-changed", map[string]any{"accounts": []string{testAccount, other}})
	wallet = walletResponse{}
	_ = json.NewDecoder(rec.Body).Decode(&wallet)
	if !wallet.Connected || wallet.Address != testAccount {
		t.Fatalf("expected first account after reconnect, got %+v", wallet)
	}
	resp := decodeCatalog(t, c.do(http.MethodGet, "/api/catalog", nil))
	if len(resp.Results) != 6 {
		t.Fatalf("expected 6 results after reconnect, got %d", len(resp.Results))
	}
}

func TestAPI_PopularSecondPageAppends(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()
	c.connect()

	resp := decodeCatalog(t, c.do(http.MethodPost, "/api/catalog/popular", map[string]int{"page": 2}))
	if resp.Page != 2 || len(resp.Results) != 12 {
		t.Fatalf("expected page 2 appended, got page %d with %d results", resp.Page, len(resp.Results))
	}
}

func TestHandlersWithoutSessionController(t *testing.T) {
	routes := map[string]http.HandlerFunc{
		"wallet":  NewWalletHandler().Get,
		"catalog": NewCatalogHandler().State,
	}
	for name, h := range routes {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if msg := errorMessage(t, rec); msg != "session required" {
			t.Fatalf("%s: unexpected error %q", name, msg)
		}
	}
}

func TestAPI_InvalidBody(t *testing.T) {
	c := newAPIClient(t)
	c.openSession()

	req := httptest.NewRequest(http.MethodPost, "/api/wallet/connect", strings.NewReader("{not json"))
	req.Header.Set("X-Session-Token", c.token)
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVersionRouteIsPublic(t *testing.T) {
	store := sessions.NewService(metadata.NewClient(""), time.Hour)
	t.Cleanup(store.Close)
	c := &apiClient{t: t, router: NewAPIRouter(store, RouterOptions{Version: NewVersionHandler(nil, "1.0.0")})}

	rec := c.do(http.MethodGet, "/api/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version":"1.0.0"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
