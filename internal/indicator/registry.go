package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
)

// IndicatorRegistry resolves configured indicators by type so pipelines can be
// assembled from a list of names.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// SeriesRegistry is the map-backed IndicatorRegistry. Safe for concurrent use.
type SeriesRegistry struct {
	mu      sync.RWMutex
	entries map[types.IndicatorType]Indicator
}

// NewIndicatorRegistry creates an empty registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &SeriesRegistry{
		mu:      sync.RWMutex{},
		entries: map[types.IndicatorType]Indicator{},
	}
}

// RegisterIndicator stores indicator under its Name. Each type may be
// registered once; reconfigure the stored instance instead of replacing it.
func (r *SeriesRegistry) RegisterIndicator(indicator Indicator) error {
	if indicator == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "cannot register a nil indicator")
	}

	name := indicator.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.entries[name]; taken {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s is already registered", name)
	}

	r.entries[name] = indicator

	return nil
}

func (r *SeriesRegistry) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	ind, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s is not registered", name)
	}

	return ind, nil
}

// ListIndicators returns the registered types sorted by name.
func (r *SeriesRegistry) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	names := make([]types.IndicatorType, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

func (r *SeriesRegistry) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s is not registered", name)
	}

	delete(r.entries, name)

	return nil
}
