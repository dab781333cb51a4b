// Package reference detects scripture-style citations ("John 3:16",
// "Genesis 1:1-5") in raw document text.
//
// Detection runs on the raw text, before tokenization, so the numeric
// chapter and verse spans are never lost to tokenizer rules. Each match is
// attributed to its book name, normalized the same way document tokens are
// ("1 John" -> "john", "Song of Songs" -> "song of songs"), so the bonus
// lands on the word that appears in the cloud.
//
// Two rules are applied:
//  1. a catalog of known book names, case-insensitive, followed by a chapter
//     and an optional verse or range ("Psalm 23", "john 3:16-18")
//  2. any capitalized word followed by a chapter:verse pattern ("Enoch 1:9").
//     A preceding capitalized word is part of the name only when it is an
//     ordinal ("First Enoch 1:9"); otherwise "Read Enoch 1:9" credits "enoch".
//
// Catalog matches take precedence where the two rules overlap.
package reference

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/chriscorrea/wordsift/internal/tokenize"
)

// Books lists the book names recognized case-insensitively.
var Books = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy", "Joshua", "Judges", "Ruth",
	"1 Samuel", "2 Samuel", "1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra", "Nehemiah",
	"Esther", "Job", "Psalm", "Psalms", "Proverbs", "Ecclesiastes", "Song of Songs", "Isaiah", "Jeremiah",
	"Lamentations", "Ezekiel", "Daniel", "Hosea", "Joel", "Amos", "Obadiah", "Jonah", "Micah", "Nahum",
	"Habakkuk", "Zephaniah", "Haggai", "Zechariah", "Malachi", "Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians", "Philippians", "Colossians",
	"1 Thessalonians", "2 Thessalonians", "1 Timothy", "2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John", "Jude", "Revelation",
}

const (
	chapterVerse = `(\d{1,3}):(\d{1,3})(?:\s*[-–]\s*(\d{1,3}))?`
	chapterOnly  = `(\d{1,3})(?:\s*[-–]\s*(\d{1,3}))?`
)

var (
	catalogRegex = buildCatalogRegex()
	genericRegex = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+` + chapterVerse + `\b`)

	// namePrefixes may open a two-word generic book name
	namePrefixes = map[string]struct{}{
		"first": {}, "second": {}, "third": {}, "fourth": {},
	}

	// canonicalBooks maps a lower-cased, space-collapsed book name to its catalog spelling
	canonicalBooks = func() map[string]string {
		m := make(map[string]string, len(Books))
		for _, b := range Books {
			m[strings.ToLower(b)] = b
		}
		return m
	}()
)

// buildCatalogRegex compiles the book alternation, longest names first so
// "1 John" and "Psalms" win over "John" and "Psalm".
func buildCatalogRegex() *regexp.Regexp {
	names := make([]string, len(Books))
	copy(names, Books)
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	alternatives := make([]string, len(names))
	for i, name := range names {
		alternatives[i] = strings.ReplaceAll(regexp.QuoteMeta(name), " ", `\s+`)
	}

	pattern := `(?i)\b(` + strings.Join(alternatives, "|") + `)\s+(?:` + chapterVerse + `|` + chapterOnly + `)\b`
	return regexp.MustCompile(pattern)
}

// Match is a single detected citation.
type Match struct {
	Book     string // book name as it should be displayed ("John")
	Key      string // normalized token key receiving the bonus ("john")
	Citation string // normalized citation ("John 3:16")
	Start    int    // byte offset in the scanned text
	End      int
}

// Result aggregates the matches found in one document.
type Result struct {
	Bonuses   map[string]int // key -> number of matches
	Citations map[string]int // normalized citation -> number of matches
	Keys      []string       // keys in first-seen order
	Matches   int
}

// Detect scans text and aggregates every citation it finds.
func Detect(text string) Result {
	return DetectAll([]string{text})
}

// DetectAll scans each segment independently, so a citation never spans two
// extracted strings, and aggregates the matches in segment order.
func DetectAll(segments []string) Result {
	result := Result{
		Bonuses:   make(map[string]int),
		Citations: make(map[string]int),
		Keys:      []string{},
	}

	for _, segment := range segments {
		for _, m := range Find(segment) {
			if _, seen := result.Bonuses[m.Key]; !seen {
				result.Keys = append(result.Keys, m.Key)
			}
			result.Bonuses[m.Key]++
			result.Citations[m.Citation]++
			result.Matches++
		}
	}

	slog.Debug("References detected", "segments", len(segments), "matches", result.Matches, "books", len(result.Keys))
	return result
}

// Find returns all non-overlapping citations in text, ordered by position.
func Find(text string) []Match {
	if text == "" {
		return nil
	}

	var matches []Match
	for _, loc := range catalogRegex.FindAllStringSubmatchIndex(text, -1) {
		if m, ok := catalogMatch(text, loc); ok {
			matches = append(matches, m)
		}
	}

	for _, loc := range genericRegex.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(matches, loc[0], loc[1]) {
			continue
		}
		if m, ok := genericMatch(text, loc); ok {
			matches = append(matches, m)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

// catalogMatch builds a Match from a catalogRegex submatch index slice.
// Groups: 1 book, 2 chapter, 3 verse, 4 verse end, 5 chapter (no verse), 6 chapter end.
func catalogMatch(text string, loc []int) (Match, bool) {
	raw := strings.Join(strings.Fields(group(text, loc, 1)), " ")
	book, ok := canonicalBooks[strings.ToLower(raw)]
	if !ok {
		return Match{}, false
	}

	var numbers string
	if chapter := group(text, loc, 2); chapter != "" {
		numbers = formatVerse(chapter, group(text, loc, 3), group(text, loc, 4))
	} else {
		numbers = group(text, loc, 5)
		if end := group(text, loc, 6); end != "" {
			numbers += "-" + end
		}
	}

	return newMatch(book, numbers, loc[0], loc[1])
}

// genericMatch builds a Match from a genericRegex submatch index slice.
// Groups: 1 name, 2 chapter, 3 verse, 4 verse end.
func genericMatch(text string, loc []int) (Match, bool) {
	start := loc[2]
	words := strings.Fields(group(text, loc, 1))
	if len(words) == 2 {
		if _, ok := namePrefixes[strings.ToLower(words[0])]; !ok {
			start += strings.LastIndex(group(text, loc, 1), words[1])
			words = words[1:]
		}
	}
	numbers := formatVerse(group(text, loc, 2), group(text, loc, 3), group(text, loc, 4))
	return newMatch(strings.Join(words, " "), numbers, start, loc[1])
}

func newMatch(book, numbers string, start, end int) (Match, bool) {
	key := tokenize.Phrase(book)
	if key == "" {
		return Match{}, false
	}
	return Match{
		Book:     book,
		Key:      key,
		Citation: book + " " + numbers,
		Start:    start,
		End:      end,
	}, true
}

func formatVerse(chapter, verse, verseEnd string) string {
	s := fmt.Sprintf("%s:%s", chapter, verse)
	if verseEnd != "" {
		s += "-" + verseEnd
	}
	return s
}

func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

func overlaps(matches []Match, start, end int) bool {
	for _, m := range matches {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}
