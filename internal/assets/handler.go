package assets

import (
	"net/http"

	"github.com/hhsystems1/Intakeform/internal/transport"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Logo serves the branding image, or 204 when it is suppressed.
func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.resolver.Resolve(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	transport.WriteBytes(w, http.StatusOK, asset.ContentType, asset.Data)
}
