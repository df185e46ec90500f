package playlist

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed markets.toml
var marketsTOML []byte

// defaultLanguage is the profile used for any language without an entry.
const defaultLanguage = "English"

// MarketProfile scopes catalog searches for one language: which regional
// markets to try (in order) and the minimum track popularity to accept.
type MarketProfile struct {
	Markets       []string `toml:"markets"`
	MinPopularity int      `toml:"min_popularity"`
}

var marketProfiles = mustLoadProfiles()

func mustLoadProfiles() map[string]MarketProfile {
	profiles := make(map[string]MarketProfile)
	if err := toml.Unmarshal(marketsTOML, &profiles); err != nil {
		panic(fmt.Sprintf("playlist: parsing embedded markets table: %v", err))
	}
	if _, ok := profiles[defaultLanguage]; !ok {
		panic("playlist: embedded markets table has no English profile")
	}
	return profiles
}

// ProfileFor returns the market profile for a language, falling back to the
// English profile for unknown languages.
func ProfileFor(language string) MarketProfile {
	if profile, ok := marketProfiles[language]; ok {
		return profile
	}
	return marketProfiles[defaultLanguage]
}
