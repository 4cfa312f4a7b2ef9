package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// VersionHandler reports the running build. An explicit version wins; otherwise
// version.txt is read once from the working directory.
type VersionHandler struct {
	fs      afero.Fs
	version string
	once    sync.Once
}

type VersionResponse struct {
	Version string `json:"version"`
}

func NewVersionHandler(fs afero.Fs, version string) *VersionHandler {
	return &VersionHandler{fs: fs, version: strings.TrimSpace(version)}
}

// Version returns the resolved version string, "unknown" when none is found.
func (h *VersionHandler) Version() string {
	h.once.Do(func() {
		if h.version != "" {
			return
		}
		h.version = "unknown"
		if h.fs == nil {
			return
		}
		if data, err := afero.ReadFile(h.fs, "version.txt"); err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				h.version = v
			}
		}
	})
	return h.version
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: h.Version()})
}
