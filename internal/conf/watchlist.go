package conf

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Watchlist names what to monitor and which keyword tables apply. The
// filtering and scoring algorithms live elsewhere; this is just the data.
type Watchlist struct {
	Subreddits        []string `yaml:"subreddits"`
	PostsPerSubreddit int      `yaml:"postsPerSubreddit"`

	SearchKeywords    []string `yaml:"searchKeywords"`
	ResultsPerKeyword int      `yaml:"resultsPerKeyword"`

	// RelevanceKeywords drive queue priority scoring only; an item with no
	// hit is still kept.
	RelevanceKeywords []string `yaml:"relevanceKeywords"`

	// ExcludeKeywords reject an item outright when any appears as a
	// substring of its lower-cased title+content.
	ExcludeKeywords []string `yaml:"excludeKeywords"`
}

// LoadWatchlist reads the YAML watchlist, falling back to built-in defaults
// when the file is missing or malformed.
func LoadWatchlist(path string, logger *slog.Logger) Watchlist {
	wl := defaultWatchlist()

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cannot read watchlist, using defaults", "path", path, "err", err)
		}
		return wl
	}

	var fileWL Watchlist
	if err := yaml.Unmarshal(raw, &fileWL); err != nil {
		logger.Warn("cannot parse watchlist, using defaults", "path", path, "err", err)
		return wl
	}

	if len(fileWL.Subreddits) > 0 {
		wl.Subreddits = fileWL.Subreddits
	}
	if fileWL.PostsPerSubreddit > 0 {
		wl.PostsPerSubreddit = fileWL.PostsPerSubreddit
	}
	if len(fileWL.SearchKeywords) > 0 {
		wl.SearchKeywords = fileWL.SearchKeywords
	}
	if fileWL.ResultsPerKeyword > 0 {
		wl.ResultsPerKeyword = fileWL.ResultsPerKeyword
	}
	if len(fileWL.RelevanceKeywords) > 0 {
		wl.RelevanceKeywords = fileWL.RelevanceKeywords
	}
	if len(fileWL.ExcludeKeywords) > 0 {
		wl.ExcludeKeywords = fileWL.ExcludeKeywords
	}
	return wl
}

func defaultWatchlist() Watchlist {
	return Watchlist{
		Subreddits: []string{
			"gamedev",
			"indiegaming",
			"IndieDev",
			"godot",
			"unity",
			"unrealengine",
			"SoloDevelopment",
			"gamedesign",
		},
		PostsPerSubreddit: 10,
		SearchKeywords: []string{
			"no code game",
			"make game without coding",
			"AI game maker",
			"game dev beginner",
			"how to make a game",
		},
		ResultsPerKeyword: 10,
		RelevanceKeywords: []string{
			"no code",
			"no-code",
			"without coding",
			"can't code",
			"beginner",
			"game idea",
			"prototype",
			"ai tool",
			"struggling",
			"frustrated",
		},
		ExcludeKeywords: []string{
			"hiring",
			"for hire",
			"job posting",
			"crypto",
			"nft",
			"giveaway",
		},
	}
}
