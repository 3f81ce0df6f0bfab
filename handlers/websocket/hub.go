package websocket

import (
	"context"
	"net/http"
	"overlay-server/core"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	OverlaysRoom socketio.Room = "overlays"

	EventInit   = "overlays-init"
	EventChange = "overlay-change"
)

type emitFunc func(event string, args ...any) error

// Hub pushes overlay changes to every connected Socket.IO client. It
// implements core.ChangeNotifier.
type Hub struct {
	srv   *socketio.Server
	store core.OverlayStore
	emit  emitFunc

	mu      sync.RWMutex
	clients map[socketio.SocketId]struct{}
}

// NewHub builds the Socket.IO server. store is read to send each new client
// the current overlay list; it should be the undecorated store.
func NewHub(store core.OverlayStore, allowedOrigins []string) *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(1000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      corsOrigin(allowedOrigins),
		Credentials: true,
	})

	h := &Hub{
		srv:     socketio.NewServer(nil, opts),
		store:   store,
		clients: make(map[socketio.SocketId]struct{}),
	}
	h.emit = func(event string, args ...any) error {
		return h.srv.To(OverlaysRoom).Emit(event, args...)
	}

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	h.srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		h.onConnect(socket)
	})

	return h
}

func (h *Hub) onConnect(socket *socketio.Socket) {
	me := socket.Id()
	socket.Join(OverlaysRoom)
	utils.Log().Printf("Socket %v has joined %v\n", me, OverlaysRoom)

	_ = socket.Emit(EventInit, h.connected(me))

	socket.On("disconnect", func(...any) {
		h.disconnected(me)
		utils.Log().Printf("Socket %v has left %v\n", me, OverlaysRoom)
		socket.RemoveAllListeners("")
	})
}

// connected registers a client and returns the overlay list it is sent as
// EventInit.
func (h *Hub) connected(id socketio.SocketId) []map[string]any {
	h.mu.Lock()
	h.clients[id] = struct{}{}
	h.mu.Unlock()

	overlays, err := h.store.List(context.Background())
	if err != nil {
		logrus.WithError(err).Warn("failed to list overlays for new client")
		overlays = nil
	}
	records := make([]map[string]any, 0, len(overlays))
	for _, overlay := range overlays {
		records = append(records, map[string]any(overlay))
	}
	return records
}

func (h *Hub) disconnected(id socketio.SocketId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) NotifyChange(ctx context.Context, change core.OverlayChange) {
	payload := changePayload(change)

	log := logrus.WithFields(logrus.Fields{
		"overlay_id": change.ID,
		"action":     change.Action,
	})
	if err := h.emit(EventChange, payload); err != nil {
		log.WithError(err).Warn("failed to broadcast overlay change")
		return
	}
	log.Debug("Broadcast overlay change")
}

func (h *Hub) Handler() http.Handler {
	return h.srv.ServeHandler(nil)
}

func (h *Hub) Close() {
	h.srv.Close(nil)
}

func changePayload(change core.OverlayChange) map[string]any {
	payload := map[string]any{
		"action": string(change.Action),
		"id":     change.ID,
		"seq":    change.Seq,
	}
	if change.Overlay != nil {
		payload["overlay"] = map[string]any(change.Overlay.Clone())
	}
	return payload
}

func corsOrigin(allowed []string) any {
	if len(allowed) == 0 {
		return "*"
	}
	origins := make([]any, 0, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return "*"
		}
		origins = append(origins, origin)
	}
	return origins
}
