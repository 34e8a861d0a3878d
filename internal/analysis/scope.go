package analysis

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// ErrInvalidScope indicates a document_ids value that is not a list of positive integers.
var ErrInvalidScope = errors.New("document_ids must be a comma-separated list of positive integers")

// Scope restricts aggregation to a set of documents. The zero Scope covers every document.
type Scope struct {
	ids []int64
}

// NewScope builds a scope from ids, dropping duplicates.
func NewScope(ids ...int64) Scope {
	set := mapset.NewThreadUnsafeSet(ids...)
	return Scope{ids: sorted(set)}
}

// ParseScope parses "1,2,3". Blank entries are ignored; an empty string yields the zero Scope.
func ParseScope(raw string) (Scope, error) {
	set := mapset.NewThreadUnsafeSet[int64]()
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 1 {
			return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, part)
		}
		set.Add(id)
	}
	return Scope{ids: sorted(set)}, nil
}

// ScopeFromQuery reads document_ids, falling back to a single document_id.
func ScopeFromQuery(values url.Values) (Scope, error) {
	if raw := values.Get("document_ids"); raw != "" {
		return ParseScope(raw)
	}
	return ParseScope(values.Get("document_id"))
}

// All reports whether the scope covers every document.
func (s Scope) All() bool {
	return len(s.ids) == 0
}

// IDs returns the scoped document ids in ascending order.
func (s Scope) IDs() []int64 {
	return slices.Clone(s.ids)
}

// Arg returns the scope as a bigint[] query argument, or nil for every document.
func (s Scope) Arg() any {
	if s.All() {
		return nil
	}
	return s.ids
}

func sorted(set mapset.Set[int64]) []int64 {
	if set.Cardinality() == 0 {
		return nil
	}
	ids := set.ToSlice()
	slices.Sort(ids)
	return ids
}
