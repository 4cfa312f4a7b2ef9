package handlers

import (
	"errors"
	"net/http"

	"moviegate/internal/logger"
	"moviegate/models"
	"moviegate/services/wallet"
)

// WalletHandler relays what the browser's wallet provider reported. The server
// never talks to the wallet itself and never verifies the address.
type WalletHandler struct{}

func NewWalletHandler() *WalletHandler {
	return &WalletHandler{}
}

// walletReport is the frontend's rendition of a provider answer.
type walletReport struct {
	// Available is false when the browser found no provider. Omitted means true.
	Available *bool                 `json:"available,omitempty"`
	Accounts  []string              `json:"accounts"`
	Error     *wallet.ProviderError `json:"error,omitempty"`
}

func (rep walletReport) provider() wallet.Provider {
	if rep.Available != nil && !*rep.Available {
		return nil
	}
	var err error
	if rep.Error != nil {
		err = rep.Error
	}
	return wallet.NewStaticProvider(rep.Accounts, err)
}

type walletResponse struct {
	Connected      bool   `json:"connected"`
	Address        string `json:"address,omitempty"`
	DisplayAddress string `json:"displayAddress,omitempty"`
	ShortAddress   string `json:"shortAddress,omitempty"`
}

func newWalletResponse(ws models.WalletSession) walletResponse {
	if !ws.Connected() {
		return walletResponse{}
	}
	return walletResponse{
		Connected:      true,
		Address:        ws.Address,
		DisplayAddress: wallet.DisplayAddress(ws.Address),
		ShortAddress:   ws.ShortAddress(),
	}
}

// Connect handles the result of eth_requestAccounts.
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	var report walletReport
	if err := decodeBody(r, &report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := wallet.NewGate(report.provider()).RequestConnection(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, wallet.ErrProviderUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, wallet.ErrUserRejected), errors.Is(err, wallet.ErrNoAccounts):
			status = http.StatusUnauthorized
		}
		writeError(w, status, wallet.UserMessage(err))
		return
	}

	if err := c.EstablishSession(r.Context(), address); err != nil {
		logger.For(r.Context()).WithError(err).Warn("initial catalog load failed")
	}
	writeJSON(w, http.StatusOK, newWalletResponse(c.State().Wallet))
}

// Restore handles the result of eth_accounts on page load. Absent accounts
// are not an error; the session simply stays disconnected.
func (h *WalletHandler) Restore(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	var report walletReport
	if err := decodeBody(r, &report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if address, ok := wallet.NewGate(report.provider()).CheckExistingSession(r.Context()); ok {
		if err := c.EstablishSession(r.Context(), address); err != nil {
			logger.For(r.Context()).WithError(err).Warn("initial catalog load failed")
		}
	}
	writeJSON(w, http.StatusOK, newWalletResponse(c.State().Wallet))
}

// AccountsChanged handles the provider's accountsChanged event. An empty list
// clears the session; otherwise the first account becomes the session address.
func (h *WalletHandler) AccountsChanged(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	var report walletReport
	if err := decodeBody(r, &report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var loadErr error
	if len(report.Accounts) == 0 {
		c.ClearSession()
	} else {
		loadErr = c.EstablishSession(r.Context(), report.Accounts[0])
	}

	if loadErr != nil {
		logger.For(r.Context()).WithError(loadErr).Warn("catalog reload after account change failed")
	}
	writeJSON(w, http.StatusOK, newWalletResponse(c.State().Wallet))
}

// Get returns the session's wallet state.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, newWalletResponse(c.State().Wallet))
}
