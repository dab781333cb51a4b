package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxJSONDepth bounds recursion into nested arrays and objects.
const MaxJSONDepth = 64

// DefaultJSONKeys are the keys read when the caller names none. They cover
// the common blog and CMS export shapes.
var DefaultJSONKeys = []string{"plaintext", "text", "body", "content", "excerpt", "summary", "description"}

var (
	// ErrInvalidJSON reports content that does not parse as JSON.
	ErrInvalidJSON = errors.New("content is not valid JSON")
	// ErrTooDeep reports nesting beyond MaxJSONDepth.
	ErrTooDeep = errors.New("JSON nesting too deep")
)

// JSONOptions selects which string values are extracted.
type JSONOptions struct {
	// Keys whose string values (and every string nested below them) are
	// extracted; matched case-insensitively. Empty means DefaultJSONKeys.
	Keys []string
	// CollectAll extracts every string value and ignores Keys.
	CollectAll bool
}

// JSONStrings walks a JSON document and returns the selected string values in
// document order. When a key-based walk finds nothing, every string is
// collected instead, so unknown schemas still yield text.
func JSONStrings(body []byte, opts JSONOptions) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(body)

	w := walker{collectAll: opts.CollectAll, keys: keySet(opts.Keys)}
	if err := w.walk(root, false, 0); err != nil {
		return nil, err
	}

	if len(w.out) == 0 && !opts.CollectAll {
		slog.Debug("No JSON values matched keys; collecting all strings", "keys", len(w.keys))
		w = walker{collectAll: true}
		if err := w.walk(root, false, 0); err != nil {
			return nil, err
		}
	}

	slog.Debug("Extracted JSON strings", "strings", len(w.out), "collectAll", w.collectAll)
	return w.out, nil
}

type walker struct {
	collectAll bool
	keys       map[string]struct{}
	out        []string
}

// walk visits value. include is true below a selected key.
func (w *walker) walk(value gjson.Result, include bool, depth int) error {
	if depth > MaxJSONDepth {
		return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxJSONDepth)
	}

	switch {
	case value.Type == gjson.String:
		if (w.collectAll || include) && strings.TrimSpace(value.Str) != "" {
			w.out = append(w.out, value.Str)
		}
	case value.IsObject():
		var err error
		value.ForEach(func(key, child gjson.Result) bool {
			_, selected := w.keys[strings.ToLower(key.String())]
			err = w.walk(child, include || selected, depth+1)
			return err == nil
		})
		return err
	case value.IsArray():
		var err error
		value.ForEach(func(_, child gjson.Result) bool {
			err = w.walk(child, include, depth+1)
			return err == nil
		})
		return err
	}
	// null, booleans and numbers carry no text
	return nil
}

func keySet(keys []string) map[string]struct{} {
	if len(keys) == 0 {
		keys = DefaultJSONKeys
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}
