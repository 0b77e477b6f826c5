package playlist

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reel-player/reel/media"
)

// Match is a playlist entry matched by Find.
type Match struct {
	Index    int
	Ref      media.Ref
	Distance int
}

// Find fuzzy-matches query against the file names in the list, case-insensitively.
// Closer matches come first; equal distances keep playlist order.
func (n *Navigator) Find(query string) []Match {
	items := n.Items()

	var matches []Match
	for i, ref := range items {
		distance := fuzzy.RankMatchNormalizedFold(query, ref.Name())
		if distance < 0 {
			continue
		}
		matches = append(matches, Match{Index: i, Ref: ref, Distance: distance})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	return matches
}
