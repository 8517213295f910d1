package profile

import (
	"testing"

	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProfileTestSuite struct {
	suite.Suite
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileTestSuite))
}

func (suite *ProfileTestSuite) TestBuiltinProfiles() {
	profiles := BuiltinProfiles()
	suite.Equal(Profile{StartPrice: 45000, Volatility: 500}, profiles[types.AssetBTC])
	suite.Equal(Profile{StartPrice: 3000, Volatility: 50}, profiles[types.AssetETH])
	suite.NotContains(profiles, types.AssetSOL)
}

func (suite *ProfileTestSuite) TestResolveListedAsset() {
	book := NewBook(BuiltinProfiles(), DefaultProfile, false, nil)

	p, err := book.Resolve(types.AssetETH)
	suite.NoError(err)
	suite.Equal(3000.0, p.StartPrice)
	suite.Equal(50.0, p.Volatility)
}

func (suite *ProfileTestSuite) TestResolveUnlistedAssetWithDefault() {
	book := NewBook(BuiltinProfiles(), DefaultProfile, true, nil)

	p, err := book.Resolve(types.AssetSOL)
	suite.NoError(err)
	suite.Equal(DefaultProfile, p)
}

func (suite *ProfileTestSuite) TestResolveUnlistedAssetStrict() {
	book := NewBook(BuiltinProfiles(), DefaultProfile, false, nil)

	_, err := book.Resolve(types.AssetSOL)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownAsset))
	suite.True(errors.IsConfigurationError(err))
	suite.Contains(err.Error(), "SOL")
}

func (suite *ProfileTestSuite) TestBookCopiesProfiles() {
	profiles := BuiltinProfiles()
	book := NewBook(profiles, DefaultProfile, false, nil)

	delete(profiles, types.AssetBTC)

	_, err := book.Resolve(types.AssetBTC)
	suite.NoError(err)
	suite.Equal([]types.Asset{types.AssetBTC, types.AssetETH}, book.Assets())
}
