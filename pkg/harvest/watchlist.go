package harvest

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type WatchedChannel struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Watchlist is the set of channels the worker re-harvests on a timer.
type Watchlist struct {
	Channels []WatchedChannel `yaml:"channels" json:"channels"`
}

// LoadWatchlist reads the channel watchlist file. An empty path means
// no scheduled harvesting and returns an empty list.
func LoadWatchlist(path string) (Watchlist, error) {
	if path == "" {
		return Watchlist{}, nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Watchlist{}, err
	}

	var wl Watchlist
	if err := yaml.Unmarshal(content, &wl); err != nil {
		return Watchlist{}, err
	}

	if len(wl.Channels) == 0 {
		return Watchlist{}, errors.New("watchlist has no channels configured")
	}
	for _, ch := range wl.Channels {
		if ch.ID == "" {
			return Watchlist{}, errors.New("watchlist entry missing channel id")
		}
	}

	return wl, nil
}
