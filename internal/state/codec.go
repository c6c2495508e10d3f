package state

import (
	"encoding/json"
	"fmt"

	"github.com/sandeepkv93/weekplan/internal/model"
)

func encodeOverlay(overlay map[string]model.Overlay) ([]byte, error) {
	doc := make(map[string]model.Overlay, len(overlay))
	for id, entry := range overlay {
		if entry.IsZero() {
			continue
		}
		doc[id] = entry
	}
	return json.Marshal(doc)
}

// decodeOverlay parses a persisted blob. Entries that fail validation are
// returned in skipped rather than failing the whole document.
func decodeOverlay(raw []byte) (map[string]model.Overlay, []string, error) {
	doc := make(map[string]model.Overlay)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode overlay: %w", err)
	}
	skipped := make([]string, 0)
	for id, entry := range doc {
		if err := entry.Validate(); err != nil {
			delete(doc, id)
			skipped = append(skipped, id)
		}
	}
	return doc, skipped, nil
}
