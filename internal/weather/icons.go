package weather

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrIncompleteIconRegistry is returned when a registry misses a sky/precip pair.
var ErrIncompleteIconRegistry = errors.New("icon registry is incomplete")

// IconKey is the registry key for a sky/precip pair, e.g. "CLOUDY_RAIN".
func IconKey(sky SkyType, precip PrecipType) string {
	return string(sky) + "_" + string(precip)
}

// DefaultIconAssets returns the bundled asset paths for every pair.
func DefaultIconAssets() map[string]string {
	assets := make(map[string]string, len(SkyTypes)*len(PrecipTypes))
	for _, s := range SkyTypes {
		for _, p := range PrecipTypes {
			k := IconKey(s, p)
			assets[k] = "imgs/" + k + ".png"
		}
	}
	return assets
}

// IconRegistry resolves sky/precip pairs to asset references.
type IconRegistry struct {
	assets map[string]string
}

// NewIconRegistry validates that assets covers the whole SkyTypes x PrecipTypes
// cross-product. A missing or empty entry is a configuration error.
func NewIconRegistry(assets map[string]string) (*IconRegistry, error) {
	var missing []string
	for _, s := range SkyTypes {
		for _, p := range PrecipTypes {
			k := IconKey(s, p)
			if assets[k] == "" {
				missing = append(missing, k)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteIconRegistry, strings.Join(missing, ", "))
	}

	copied := make(map[string]string, len(assets))
	for k, v := range assets {
		copied[k] = v
	}
	return &IconRegistry{assets: copied}, nil
}

// MustDefaultIcons returns the registry for DefaultIconAssets.
func MustDefaultIcons() *IconRegistry {
	r, err := NewIconRegistry(DefaultIconAssets())
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the asset reference for the pair. It is total over the
// declared enums; undeclared values yield "".
func (r *IconRegistry) Resolve(sky SkyType, precip PrecipType) string {
	return r.assets[IconKey(sky, precip)]
}
