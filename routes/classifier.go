package routes

import (
	"errors"
	"sort"
	"strings"
)

// Kind is the classification outcome for a path.
type Kind uint8

const (
	// KindProtected requires an authenticated session; the fail-closed default.
	KindProtected Kind = iota
	// KindPublic is reachable without authentication but still receives
	// baseline security headers.
	KindPublic
	// KindBypass is skipped entirely: static assets, build internals, and
	// paths whose authorization lives in a different layer.
	KindBypass
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindBypass:
		return "bypass"
	default:
		return "protected"
	}
}

// Rule binds a path prefix to a classification and an optional role
// requirement. An empty role set on a protected rule means any
// authenticated session qualifies.
type Rule struct {
	Prefix string
	Kind   Kind
	Roles  []string
}

// Classification is the result of classifying one path.
type Classification struct {
	Kind Kind
	// Roles is the required role set for protected paths; empty means any
	// authenticated session.
	Roles []string
}

// Classifier resolves paths against an immutable rule table using
// longest-prefix match.
type Classifier struct {
	rules []Rule // sorted by descending prefix length
}

// NewClassifier validates and orders the rule table. Duplicate prefixes are
// rejected at startup rather than silently shadowed at request time.
func NewClassifier(rules []Rule) (*Classifier, error) {
	seen := make(map[string]struct{}, len(rules))
	ordered := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Prefix == "" || !strings.HasPrefix(r.Prefix, "/") {
			return nil, errors.New("route rule prefix must start with /")
		}
		if _, dup := seen[r.Prefix]; dup {
			return nil, errors.New("duplicate route rule prefix: " + r.Prefix)
		}
		seen[r.Prefix] = struct{}{}
		roles := make([]string, len(r.Roles))
		copy(roles, r.Roles)
		ordered = append(ordered, Rule{Prefix: r.Prefix, Kind: r.Kind, Roles: roles})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})

	return &Classifier{rules: ordered}, nil
}

// Classify resolves path to its longest matching rule. Unmatched paths are
// Protected with no specific role requirement.
func (c *Classifier) Classify(path string) Classification {
	for _, r := range c.rules {
		if matchPrefix(path, r.Prefix) {
			return Classification{Kind: r.Kind, Roles: r.Roles}
		}
	}
	return Classification{Kind: KindProtected}
}

// matchPrefix matches on path-segment boundaries so /admin does not capture
// /administrivia. The root prefix "/" matches only the root path itself:
// making it a catch-all would silently defeat the fail-closed default.
func matchPrefix(path, prefix string) bool {
	if prefix == "/" {
		return path == "/"
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}
