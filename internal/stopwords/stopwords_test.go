package stopwords

import (
	"errors"
	"reflect"
	"testing"
)

func TestGroups(t *testing.T) {
	expected := []string{"base", "contractions", "fillers", "platform", "admin", "personal", "short"}
	if result := Groups(); !reflect.DeepEqual(result, expected) {
		t.Errorf("Groups() = %q, want %q", result, expected)
	}

	words, ok := Words("Personal")
	if !ok {
		t.Fatal("Words(\"Personal\") not found")
	}
	found := map[string]bool{}
	for _, w := range words {
		found[w] = true
	}
	if !found["i"] || !found["you"] {
		t.Errorf("personal group = %q, want it to contain \"i\" and \"you\"", words)
	}

	if _, ok := Words("nope"); ok {
		t.Error("Words(\"nope\") should not be found")
	}
}

func TestFilterApply(t *testing.T) {
	tokens := []string{"the", "grace", "of", "god", "is", "really", "enough"}

	tests := []struct {
		name     string
		groups   []string
		extra    []string
		keep     []string
		expected []string
	}{
		{
			name:     "no groups",
			expected: tokens,
		},
		{
			name:     "base group",
			groups:   []string{"base"},
			expected: []string{"grace", "god", "really", "enough"},
		},
		{
			name:     "base and fillers",
			groups:   []string{"base", "fillers"},
			expected: []string{"grace", "god", "enough"},
		},
		{
			name:     "extra stopwords are case-insensitive",
			extra:    []string{" GOD ", ""},
			expected: []string{"the", "grace", "of", "is", "really", "enough"},
		},
		{
			name:     "keep overrides group membership",
			groups:   []string{"base", "fillers"},
			keep:     []string{"Really", "of"},
			expected: []string{"grace", "of", "god", "really", "enough"},
		},
		{
			name:     "keep overrides extra stopwords",
			extra:    []string{"grace"},
			keep:     []string{"grace"},
			expected: tokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewFilter(tt.groups, tt.extra, tt.keep)
			if err != nil {
				t.Fatalf("NewFilter() unexpected error: %v", err)
			}

			result := filter.Apply(tokens)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Apply() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestKeepOverridesEveryGroup(t *testing.T) {
	groups := Groups()
	for _, name := range groups {
		words, _ := Words(name)
		filter, err := NewFilter(groups, nil, words)
		if err != nil {
			t.Fatalf("NewFilter() unexpected error: %v", err)
		}
		for _, w := range words {
			if filter.IsStop(w) {
				t.Errorf("group %q: kept word %q was filtered", name, w)
			}
		}
	}
}

func TestNewFilterUnknownGroup(t *testing.T) {
	_, err := NewFilter([]string{"base", "liturgy"}, nil, nil)
	if err == nil {
		t.Fatal("NewFilter() expected error for unknown group, got nil")
	}

	var unknown *UnknownGroupError
	if !errors.As(err, &unknown) {
		t.Fatalf("NewFilter() error = %T, want *UnknownGroupError", err)
	}
	if unknown.Name != "liturgy" {
		t.Errorf("UnknownGroupError.Name = %q, want %q", unknown.Name, "liturgy")
	}
}
