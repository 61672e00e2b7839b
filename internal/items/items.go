// Package items loads and saves the tracked-item watchlist.
package items

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pricedrop/tracker-cli/internal/atomicfile"
	"github.com/pricedrop/tracker-cli/internal/model"
)

// Load reads the watchlist at path. A missing file is an empty list; a
// file that exists but cannot be decoded is an error, so a typo never
// silently empties the watchlist.
func Load(path string) ([]model.Item, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		zap.L().Warn("items file not found", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "items: read %s", path)
	}

	var list []model.Item
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, eris.Wrapf(err, "items: decode %s", path)
	}
	for i := range list {
		list[i].Normalize()
	}
	return list, nil
}

// Save writes the watchlist atomically.
func Save(path string, list []model.Item) error {
	if list == nil {
		list = []model.Item{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return eris.Wrap(err, "items: marshal")
	}
	return atomicfile.WriteFile(path, data, 0o644)
}
