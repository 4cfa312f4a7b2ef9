package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"moviegate/api"
	"moviegate/models"
	"moviegate/services/catalog"
	"moviegate/utils"
)

// SessionStore is what the API needs from the sessions service.
type SessionStore interface {
	sessionCreator
	Validate(token string) (models.Session, *catalog.Controller, error)
}

// RouterOptions configures NewAPIRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Limiter        *api.IPRateLimiter
	Version        *VersionHandler
}

// NewAPIRouter wires every HTTP route.
func NewAPIRouter(store SessionStore, opts RouterOptions) *mux.Router {
	r := utils.NewRouter(opts.AllowedOrigins)
	r.Use(api.RequestLogger)

	apiRouter := r.PathPrefix("/api").Subrouter()
	if opts.Limiter != nil {
		apiRouter.Use(opts.Limiter.Middleware())
	}

	if opts.Version != nil {
		apiRouter.HandleFunc("/version", opts.Version.GetVersion).Methods(http.MethodGet, http.MethodOptions)
	}

	sessionsHandler := NewSessionsHandler(store)
	apiRouter.HandleFunc("/sessions", sessionsHandler.Create).Methods(http.MethodPost, http.MethodOptions)

	walletHandler := NewWalletHandler()
	walletRouter := apiRouter.PathPrefix("/wallet").Subrouter()
	walletRouter.Use(api.SessionMiddleware(store))
	walletRouter.HandleFunc("", walletHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	walletRouter.HandleFunc("/connect", walletHandler.Connect).Methods(http.MethodPost, http.MethodOptions)
	walletRouter.HandleFunc("/restore", walletHandler.Restore).Methods(http.MethodPost, http.MethodOptions)
	walletRouter.HandleFunc("/accounts-changed", walletHandler.AccountsChanged).Methods(http.MethodPost, http.MethodOptions)

	catalogHandler := NewCatalogHandler()
	catalogRouter := apiRouter.PathPrefix("/catalog").Subrouter()
	catalogRouter.Use(api.SessionMiddleware(store), api.WalletRequiredMiddleware())
	catalogRouter.HandleFunc("", catalogHandler.State).Methods(http.MethodGet, http.MethodOptions)
	catalogRouter.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodPost, http.MethodOptions)
	catalogRouter.HandleFunc("/popular", catalogHandler.Popular).Methods(http.MethodPost, http.MethodOptions)
	catalogRouter.HandleFunc("/more", catalogHandler.LoadMore).Methods(http.MethodPost, http.MethodOptions)
	catalogRouter.HandleFunc("/select", catalogHandler.Select).Methods(http.MethodPost, http.MethodOptions)
	catalogRouter.HandleFunc("/select", catalogHandler.CloseDetails).Methods(http.MethodDelete, http.MethodOptions)
	catalogRouter.HandleFunc("/details/{id:[0-9]+}", catalogHandler.Details).Methods(http.MethodGet, http.MethodOptions)

	return r
}
