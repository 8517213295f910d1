package profile

import (
	"sort"

	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"go.uber.org/zap"
)

// Profile seeds the random walk for one asset.
type Profile struct {
	StartPrice float64 `json:"startPrice" yaml:"start_price" validate:"gt=0"`
	Volatility float64 `json:"volatility" yaml:"volatility" validate:"gte=0"`
}

// DefaultProfile is applied to assets without an entry of their own when the
// book allows it. SOL is offered by the dashboard but has no dedicated entry.
var DefaultProfile = Profile{StartPrice: 100, Volatility: 50}

// BuiltinProfiles returns the profiles shipped with the feed.
func BuiltinProfiles() map[types.Asset]Profile {
	return map[types.Asset]Profile{
		types.AssetBTC: {StartPrice: 45000, Volatility: 500},
		types.AssetETH: {StartPrice: 3000, Volatility: 50},
	}
}

// Book resolves assets to price profiles.
type Book struct {
	profiles     map[types.Asset]Profile
	fallback     Profile
	allowDefault bool
	logger       *logger.Logger
}

// NewBook creates a Book. When allowDefault is false, unlisted assets are
// rejected with ErrCodeUnknownAsset instead of receiving fallback.
func NewBook(profiles map[types.Asset]Profile, fallback Profile, allowDefault bool, log *logger.Logger) *Book {
	if log == nil {
		log = logger.NewNopLogger()
	}

	copied := make(map[types.Asset]Profile, len(profiles))
	for asset, p := range profiles {
		copied[asset] = p
	}

	return &Book{
		profiles:     copied,
		fallback:     fallback,
		allowDefault: allowDefault,
		logger:       log,
	}
}

// Resolve returns the profile for asset.
func (b *Book) Resolve(asset types.Asset) (Profile, error) {
	if p, ok := b.profiles[asset]; ok {
		return p, nil
	}

	if !b.allowDefault {
		return Profile{}, errors.Newf(errors.ErrCodeUnknownAsset, "no price profile configured for asset %s", asset)
	}

	b.logger.Warn("Asset has no price profile, using default",
		zap.String("asset", string(asset)),
		zap.Float64("start_price", b.fallback.StartPrice),
		zap.Float64("volatility", b.fallback.Volatility),
	)

	return b.fallback, nil
}

// Assets lists the assets with a dedicated profile in sorted order.
func (b *Book) Assets() []types.Asset {
	assets := make([]types.Asset, 0, len(b.profiles))
	for asset := range b.profiles {
		assets = append(assets, asset)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })

	return assets
}
