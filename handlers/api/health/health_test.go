package health

import (
	"net/http"
	"net/http/httptest"
	"overlay-server/core"
	"overlay-server/stores/memory"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedCounter int

func (c fixedCounter) Clients() int { return int(c) }

func TestHandleHealth(t *testing.T) {
	store := memory.NewOverlayStore(core.Overlay{core.IDField: "a"}, core.Overlay{core.IDField: "b"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	HandleHealth(store, fixedCounter(3))(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","overlays":2,"clients":3}`, rec.Body.String())
}

func TestHandleHealth_NoCounter(t *testing.T) {
	store := memory.NewOverlayStore()

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	HandleHealth(store, nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","overlays":0,"clients":0}`, rec.Body.String())
}
