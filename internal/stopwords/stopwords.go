// Package stopwords provides the predefined stopword groups and the filter
// that removes them from a token stream.
//
// Groups are static, named word lists that callers select by name. A filter
// combines the selected groups with caller-supplied extra stopwords and a keep
// list; the keep list is evaluated last and always wins. Matching is exact and
// case-insensitive, with no stemming.
package stopwords

import (
	"fmt"
	"log/slog"
	"strings"
)

type group struct {
	name  string
	words []string
}

// catalog holds the predefined groups in presentation order.
var catalog = []group{
	{
		// --- Common English function words ---
		name: "base",
		words: strings.Fields(`a about above after again against all am an and any are as at be because been before being
below between both but by can did do does doing down during each few for from further had has have having he her
here hers herself him himself his how i if in into is it its itself just let me more most my myself no nor not of off
on once only or other our ours ourselves out over own same she should so some such than that the their theirs them
themselves then there these they this those through to too under until up very was we were what when where which
while who whom why will with you your yours yourself yourselves`),
	},
	{
		// --- Contractions with and without apostrophes, plus their fragments ---
		name: "contractions",
		words: strings.Fields(`dont doesnt didnt isnt arent wasnt werent cant couldnt shouldnt wouldnt wont im ive
youre weve theyre its thats ill youll theyll were ve re ll d m s don't doesn't didn't isn't aren't wasn't weren't
can't couldn't shouldn't wouldn't won't i'm i've you're we've they're it's that's i'll you'll they'll`),
	},
	{
		// --- Conversational filler ---
		name: "fillers",
		words: strings.Fields(`really quite bit lot maybe perhaps sort kind thing things like well just still also yes
ok okay hmm wow oh please much many little first last next good great right`),
	},
	{
		// --- Blogging platform and web boilerplate ---
		name: "platform",
		words: strings.Fields(`journal post posts blog entry entries subscribe subscriber member members newsletter
comment comments signin signup signed feature featured image figure caption thumb bookmark paywall com org uk http
https www amp nbsp email online`),
	},
	{
		// --- Scheduling and administrative vocabulary ---
		name: "admin",
		words: strings.Fields(`meeting panel portfolio form forms draft version page pages section order list listening
sent received phone zoom room team advisor advisory process course week weeks month months year years today tomorrow
yesterday morning evening night hour hours time times context`),
	},
	{
		// --- Personal pronouns ---
		name: "personal",
		words: strings.Fields(`i me my mine myself you your yours yourself yourselves he him his himself she her hers
herself we us our ours ourselves they them their theirs themselves`),
	},
	{
		// --- Short high-frequency verbs and adverbs ---
		name: "short",
		words: strings.Fields(`us one two say says said may might must yet got get go goes went let use look new old away
back keep rather already probably though instead ever always`),
	},
}

var groupIndex = func() map[string]map[string]struct{} {
	index := make(map[string]map[string]struct{}, len(catalog))
	for _, g := range catalog {
		set := make(map[string]struct{}, len(g.words))
		for _, w := range g.words {
			set[w] = struct{}{}
		}
		index[g.name] = set
	}
	return index
}()

// Groups returns the names of all predefined groups in catalog order.
func Groups() []string {
	names := make([]string, len(catalog))
	for i, g := range catalog {
		names[i] = g.name
	}
	return names
}

// Words returns a copy of the word list for the named group.
func Words(name string) ([]string, bool) {
	for _, g := range catalog {
		if g.name == normalize(name) {
			words := make([]string, len(g.words))
			copy(words, g.words)
			return words, true
		}
	}
	return nil, false
}

// UnknownGroupError reports a group name that is not in the catalog.
type UnknownGroupError struct {
	Name string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown stopword group %q (known: %s)", e.Name, strings.Join(Groups(), ", "))
}

// Filter removes stopwords from token streams.
type Filter struct {
	stop map[string]struct{}
	keep map[string]struct{}
}

// NewFilter builds a filter from group names, extra stopwords and keep words.
// It returns an *UnknownGroupError for a group that is not in the catalog.
func NewFilter(groups, extra, keep []string) (*Filter, error) {
	stop := make(map[string]struct{})
	for _, name := range groups {
		set, ok := groupIndex[normalize(name)]
		if !ok {
			return nil, &UnknownGroupError{Name: name}
		}
		for w := range set {
			stop[w] = struct{}{}
		}
	}
	for _, w := range extra {
		if w = normalize(w); w != "" {
			stop[w] = struct{}{}
		}
	}

	slog.Debug("Stopword filter built", "groups", len(groups), "stopwords", len(stop), "keep", len(keep))
	return &Filter{stop: stop, keep: Set(keep)}, nil
}

// IsStop reports whether token would be removed.
func (f *Filter) IsStop(token string) bool {
	token = normalize(token)
	if _, kept := f.keep[token]; kept {
		return false
	}
	_, stopped := f.stop[token]
	return stopped
}

// Apply returns the tokens that survive filtering, in their original order.
func (f *Filter) Apply(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !f.IsStop(token) {
			kept = append(kept, token)
		}
	}
	return kept
}

// Keep returns the filter's keep list as a set.
func (f *Filter) Keep() map[string]struct{} {
	return f.keep
}

// Set lower-cases and trims words into a set, skipping blanks.
func Set(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = normalize(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
