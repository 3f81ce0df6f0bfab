package health

import (
	"net/http"
	"overlay-server/core"

	"github.com/go-chi/render"
)

type (
	Response struct {
		Status   string `json:"status"`
		Overlays int    `json:"overlays"`
		Clients  int    `json:"clients"`
	}

	// ClientCounter reports how many live-update clients are connected.
	ClientCounter interface {
		Clients() int
	}
)

// HandleHealth reports liveness together with the current collection size
// and, when clients is non-nil, the number of connected live-update clients.
func HandleHealth(store core.OverlayStore, clients ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Status: "ok", Overlays: store.Len()}
		if clients != nil {
			resp.Clients = clients.Clients()
		}
		render.JSON(w, r, resp)
	}
}
