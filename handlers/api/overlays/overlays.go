package overlays

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"overlay-server/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	ErrorResponse struct {
		Error string `json:"error"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

const (
	MsgNotFound      = "Overlay not found"
	MsgMissingFields = "Missing required fields"
	MsgDeleted       = "Overlay deleted successfully"
)

var (
	errEmptyBody    = errors.New("request body is empty")
	errNotObject    = errors.New("request body must be a JSON object")
	errTrailingData = errors.New("request body must contain a single JSON object")
)

// HandleList returns every stored overlay.
func HandleList(store core.OverlayStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overlays, err := store.List(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to list overlays")
			respondError(w, r, err)
			return
		}

		if overlays == nil {
			overlays = []core.Overlay{}
		}
		render.JSON(w, r, overlays)
	}
}

func HandleGet(store core.OverlayStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		overlay, err := store.FindID(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}

		render.JSON(w, r, overlay)
	}
}

// HandleCreate stores the posted overlay under a fresh id and answers 201.
func HandleCreate(store core.OverlayStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := decodeOverlay(r)
		if err != nil {
			logrus.WithField("error", err).Warn("Failed to decode overlay")
			respondError(w, r, err)
			return
		}

		created, err := store.Create(r.Context(), payload)
		if err != nil {
			respondError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

// HandleUpdate replaces the overlay at {id} with the request body. Fields
// missing from the body are dropped; the id is kept.
func HandleUpdate(store core.OverlayStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		payload, err := decodeOverlay(r)
		if errors.Is(err, errNotObject) {
			// A well-formed but non-object body only matters once the
			// overlay exists.
			if _, findErr := store.FindID(r.Context(), id); findErr != nil {
				respondError(w, r, findErr)
				return
			}
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"overlay_id": id,
				"error":      err,
			}).Warn("Failed to decode overlay")
			respondError(w, r, err)
			return
		}

		updated, err := store.Update(r.Context(), id, payload)
		if err != nil {
			respondError(w, r, err)
			return
		}

		render.JSON(w, r, updated)
	}
}

func HandleDelete(store core.OverlayStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := store.Delete(r.Context(), id); err != nil {
			respondError(w, r, err)
			return
		}

		render.JSON(w, r, MessageResponse{Message: MsgDeleted})
	}
}

// respondError maps store errors onto status codes. Anything that is not a
// known kind is reported as a bad request carrying the error text.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: MsgNotFound})
	case errors.Is(err, core.ErrInvalidInput):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: MsgMissingFields})
	default:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
	}
}

func decodeOverlay(r *http.Request) (core.Overlay, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	fields, ok := payload.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return core.Overlay(fields), nil
}
