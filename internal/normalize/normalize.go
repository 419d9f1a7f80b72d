// Package normalize maps free text typed by farmers to canonical reference keys.
package normalize

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/agrocredito/agrocredito-backend/internal/reference"
)

// DefaultSimilarityFloor is the minimum similarity for a fuzzy match
const DefaultSimilarityFloor = 0.75

// Fold lowercases, strips accents and collapses whitespace
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Key turns folded text into a table key ("Alta Verapaz" -> "alta_verapaz")
func Key(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "_")
}

// Similarity is 1 - levenshtein distance / length of the longer string
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Resolver resolves free text against alias tables built from the reference tables
type Resolver struct {
	floor      float64
	crops      map[string]string
	locations  map[string]string
	irrigation map[string]reference.Irrigation
	channels   map[string]reference.Channel
}

// NewResolver builds a resolver over the crop and department keys in tables
func NewResolver(tables *reference.Tables) *Resolver {
	r := &Resolver{
		floor:      DefaultSimilarityFloor,
		crops:      map[string]string{},
		locations:  map[string]string{},
		irrigation: map[string]reference.Irrigation{},
		channels:   map[string]reference.Channel{},
	}

	for key, p := range tables.Crops {
		r.crops[Fold(strings.ReplaceAll(key, "_", " "))] = key
		r.crops[Fold(p.Name)] = key
	}
	for alias, key := range cropAliases {
		if _, ok := tables.Crops[key]; ok {
			r.crops[Fold(alias)] = key
		}
	}

	for key, p := range tables.Locations {
		r.locations[Fold(strings.ReplaceAll(key, "_", " "))] = key
		r.locations[Fold(p.Name)] = key
	}
	for alias, key := range locationAliases {
		if _, ok := tables.Locations[key]; ok {
			r.locations[Fold(alias)] = key
		}
	}

	for _, irr := range reference.Irrigations {
		r.irrigation[Fold(string(irr))] = irr
	}
	for alias, irr := range irrigationAliases {
		r.irrigation[Fold(alias)] = irr
	}
	for _, ch := range reference.Channels {
		r.channels[Fold(string(ch))] = ch
		r.channels[Fold(strings.ReplaceAll(string(ch), "_", " "))] = ch
		r.channels[Fold(ch.Label())] = ch
	}
	for alias, ch := range channelAliases {
		r.channels[Fold(alias)] = ch
	}
	return r
}

// WithFloor returns a copy of r using a different similarity floor
func (r *Resolver) WithFloor(floor float64) *Resolver {
	cp := *r
	cp.floor = floor
	return &cp
}

// ResolveCrop returns the canonical crop key. When nothing matches, the folded
// text is returned with ok=false so the engines apply their crop fallback.
func (r *Resolver) ResolveCrop(text string) (string, bool) {
	if key, ok := match(r.crops, text, r.floor); ok {
		return key, true
	}
	return Key(text), false
}

// ResolveLocation returns the canonical department key, or the folded text
// with ok=false.
func (r *Resolver) ResolveLocation(text string) (string, bool) {
	if key, ok := match(r.locations, text, r.floor); ok {
		return key, true
	}
	// "Aldea X, Huehuetenango" style answers: try each comma separated part
	parts := strings.Split(text, ",")
	for i := len(parts) - 1; i >= 0 && len(parts) > 1; i-- {
		if key, ok := match(r.locations, parts[i], r.floor); ok {
			return key, true
		}
	}
	return Key(text), false
}

// MatchIrrigation maps text to one of the four irrigation categories. The
// number of an option in reference.Irrigations is accepted too.
func (r *Resolver) MatchIrrigation(text string) (reference.Irrigation, bool) {
	if n, ok := ParseOption(text, len(reference.Irrigations)); ok {
		return reference.Irrigations[n-1], true
	}
	return match(r.irrigation, text, r.floor)
}

// MatchChannel maps text to one of the four commercialization channels, or
// to the numbered option in reference.Channels
func (r *Resolver) MatchChannel(text string) (reference.Channel, bool) {
	if n, ok := ParseOption(text, len(reference.Channels)); ok {
		return reference.Channels[n-1], true
	}
	return match(r.channels, text, r.floor)
}

func match[V any](aliases map[string]V, text string, floor float64) (V, bool) {
	var zero V
	folded := Fold(text)
	if folded == "" {
		return zero, false
	}
	if v, ok := aliases[folded]; ok {
		return v, true
	}

	best, bestScore := "", 0.0
	for alias := range aliases {
		score := Similarity(folded, alias)
		// ties break on the alias so results do not depend on map order
		if score > bestScore || (score == bestScore && alias < best) {
			best, bestScore = alias, score
		}
	}
	if best != "" && bestScore >= floor {
		return aliases[best], true
	}
	return zero, false
}
