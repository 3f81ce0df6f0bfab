package stores

import (
	"overlay-server/core"
	"overlay-server/stores/memory"

	"github.com/sirupsen/logrus"
)

// SampleOverlayID is the fixed id of the overlay seeded for manual testing.
const SampleOverlayID = "sample-id-1"

// SampleOverlay returns the record seeded at startup.
func SampleOverlay() core.Overlay {
	return core.Overlay{
		core.IDField: SampleOverlayID,
		"name":       "Sample Logo",
		"type":       "image",
		"content":    "https://example.com/logo.png",
		"position": map[string]any{
			"x": 10.0,
			"y": 10.0,
		},
		"size": map[string]any{
			"width":  100.0,
			"height": 50.0,
		},
	}
}

func GetStore(seedSample bool) core.OverlayStore {
	var seed []core.Overlay
	if seedSample {
		seed = append(seed, SampleOverlay())
	}

	store := memory.NewOverlayStore(seed...)
	logrus.WithFields(logrus.Fields{
		"storageType": "in-memory",
		"seeded":      len(seed),
	}).Info("Use storage")
	return store
}
