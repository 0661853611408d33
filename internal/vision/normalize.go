package vision

import (
	"fmt"
	"strings"
)

// Policy selects how a short tag list is padded.
type Policy string

const (
	// PolicyExpand appends related terms from the expansion table.
	PolicyExpand Policy = "expand"
	// PolicyPlaceholder appends the sentinel until the target length is reached.
	PolicyPlaceholder Policy = "placeholder"
	// PolicyNone returns whatever the labels yield, truncated.
	PolicyNone Policy = "none"
)

const (
	// DefaultMaxTags is both the padding target and the truncation length.
	DefaultMaxTags = 5
	// DefaultSentinel is the placeholder tag.
	DefaultSentinel = "unknown"
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyExpand, nil
	case PolicyExpand, PolicyPlaceholder, PolicyNone:
		return p, nil
	}
	return "", fmt.Errorf("unknown tag policy %q", s)
}

// expansions maps a coarse tag to broader terms, in the order they are tried.
var expansions = map[string][]string{
	"soup":     {"food", "dish", "meal", "liquid", "broth"},
	"salad":    {"food", "dish", "meal", "vegetable", "greens"},
	"car":      {"vehicle", "transport", "auto"},
	"cat":      {"animal", "pet", "feline"},
	"dog":      {"animal", "pet", "canine"},
	"tree":     {"plant", "nature", "wood"},
	"building": {"architecture", "structure", "construction"},
	"phone":    {"electronics", "device", "smartphone"},
	"person":   {"human", "people", "individual"},
	"computer": {"electronics", "device", "technology"},
}

// DefaultExpansions returns a copy of the built-in expansion table.
func DefaultExpansions() map[string][]string {
	out := make(map[string][]string, len(expansions))
	for k, v := range expansions {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// PossibleObject is one upstream label with its confidence.
type PossibleObject struct {
	Name       string  `json:"name" example:"cat"`
	Confidence float64 `json:"confidence" example:"0.97"`
}

// Result is the normalized view of a label list.
type Result struct {
	Tags            []string
	PossibleObjects []PossibleObject
}

// Joined returns the tags as a single comma separated string.
func (r Result) Joined() string {
	return strings.Join(r.Tags, ", ")
}

// Normalizer turns raw labels into a fixed-length tag list.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	policy     Policy
	max        int
	sentinel   string
	expansions map[string][]string
}

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithExpansions replaces the expansion table. The map is copied with keys and
// terms lowercased and trimmed, like the tags they are matched against.
func WithExpansions(table map[string][]string) NormalizerOption {
	return func(n *Normalizer) {
		n.expansions = make(map[string][]string, len(table))
		for k, v := range table {
			terms := make([]string, 0, len(v))
			for _, term := range v {
				terms = append(terms, strings.ToLower(strings.TrimSpace(term)))
			}
			n.expansions[strings.ToLower(strings.TrimSpace(k))] = terms
		}
	}
}

// WithSentinel sets the placeholder tag.
func WithSentinel(sentinel string) NormalizerOption {
	return func(n *Normalizer) {
		n.sentinel = sentinel
	}
}

// NewNormalizer returns a Normalizer applying policy with maxTags tags.
// A non-positive max falls back to DefaultMaxTags.
func NewNormalizer(policy Policy, maxTags int, opts ...NormalizerOption) *Normalizer {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	n := &Normalizer{
		policy:     policy,
		max:        maxTags,
		sentinel:   DefaultSentinel,
		expansions: expansions,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Policy returns the active padding policy.
func (n *Normalizer) Policy() Policy {
	return n.policy
}

// Normalize lowercases and deduplicates the label descriptions, pads them
// according to the policy and truncates to the configured maximum. Raw tags
// keep their upstream order; padding is only ever appended after them.
// PossibleObjects mirrors labels one to one.
func (n *Normalizer) Normalize(labels []RawLabel) Result {
	objects := make([]PossibleObject, 0, len(labels))
	for _, l := range labels {
		objects = append(objects, PossibleObject{Name: strings.ToLower(l.Description), Confidence: l.Score})
	}

	ts := newTagSet(n.max)
	for _, l := range labels {
		ts.add(strings.ToLower(strings.TrimSpace(l.Description)))
	}

	if ts.size() < n.max {
		switch n.policy {
		case PolicyExpand:
			n.expand(ts)
		case PolicyPlaceholder:
			for ts.size() < n.max {
				ts.tags = append(ts.tags, n.sentinel)
			}
		case PolicyNone:
		}
	}

	tags := ts.tags
	if len(tags) > n.max {
		tags = tags[:n.max]
	}
	return Result{Tags: tags, PossibleObjects: objects}
}

// expand walks the raw tags in order and appends their expansion terms until
// the target is reached.
func (n *Normalizer) expand(ts *tagSet) {
	raw := append([]string(nil), ts.tags...)
	for _, tag := range raw {
		for _, extra := range n.expansions[tag] {
			if ts.size() >= n.max {
				return
			}
			ts.add(extra)
		}
		if ts.size() >= n.max {
			return
		}
	}
}

// tagSet is an ordered set of tags.
type tagSet struct {
	tags []string
	seen map[string]struct{}
}

func newTagSet(capacity int) *tagSet {
	return &tagSet{tags: make([]string, 0, capacity), seen: make(map[string]struct{}, capacity)}
}

func (s *tagSet) add(tag string) {
	if tag == "" {
		return
	}
	if _, ok := s.seen[tag]; ok {
		return
	}
	s.seen[tag] = struct{}{}
	s.tags = append(s.tags, tag)
}

func (s *tagSet) size() int {
	return len(s.tags)
}
