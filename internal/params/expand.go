package params

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMarker opens and closes a placeholder: %KEY%.
const DefaultMarker = '%'

// CycleError reports a parameter whose value refers back to itself through
// a chain of placeholders.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("parameter cycle: %s", strings.Join(e.Path, " -> "))
}

type lookupFunc func(key string) (string, bool, error)

// Expand performs one left-to-right substitution pass over text. Each
// begin...end delimited key that exists in the store, is not listed in
// exclude and holds a scalar value is replaced by that value. Unknown keys,
// excluded keys and list values are left untouched together with their
// markers. Substituted text is not scanned again.
func (s *Store) Expand(text string, exclude []string, begin, end rune) string {
	skip := toSet(exclude)
	out, _ := scan(text, begin, end, func(key string) (string, bool, error) {
		v, ok := s.scalar(key, skip)
		return v, ok, nil
	})
	return out
}

// Prep expands text with the default markers and no excluded keys.
func (s *Store) Prep(text string) string {
	return s.Expand(text, nil, DefaultMarker, DefaultMarker)
}

// Resolve expands text with the default markers and keeps expanding the
// values it substitutes, so parameters may be defined in terms of other
// parameters (BUILD = %DEST%/image). A key met again while its own value is
// being resolved yields a *CycleError.
func (s *Store) Resolve(text string, exclude []string) (string, error) {
	return s.resolve(text, toSet(exclude), nil)
}

// ResolveList resolves every element of a list.
func (s *Store) ResolveList(items []string, exclude []string) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		resolved, err := s.Resolve(item, exclude)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (s *Store) resolve(text string, skip map[string]struct{}, stack []string) (string, error) {
	return scan(text, DefaultMarker, DefaultMarker, func(key string) (string, bool, error) {
		raw, ok := s.scalar(key, skip)
		if !ok {
			return "", false, nil
		}
		for _, seen := range stack {
			if seen == key {
				path := append(append([]string(nil), stack...), key)
				return "", false, &CycleError{Path: path}
			}
		}
		next := append(append([]string(nil), stack...), key)
		resolved, err := s.resolve(raw, skip, next)
		if err != nil {
			return "", false, err
		}
		return resolved, true, nil
	})
}

func (s *Store) scalar(key string, skip map[string]struct{}) (string, bool) {
	if key == "" {
		return "", false
	}
	if _, excluded := skip[key]; excluded {
		return "", false
	}
	v, ok := s.values[key]
	if !ok || v.isList {
		return "", false
	}
	return v.text, true
}

func scan(text string, begin, end rune, lookup lookupFunc) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	beginLen := utf8.RuneLen(begin)
	endLen := utf8.RuneLen(end)
	rest := text
	for {
		i := strings.IndexRune(rest, begin)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])

		after := rest[i+beginLen:]
		j := strings.IndexRune(after, end)
		if j < 0 {
			b.WriteString(rest[i:])
			break
		}

		value, ok, err := lookup(after[:j])
		if err != nil {
			return "", err
		}
		if ok {
			b.WriteString(value)
			rest = after[j+endLen:]
			continue
		}

		// Not a placeholder we own; the closing marker may open the next one.
		b.WriteRune(begin)
		rest = after
	}
	return b.String(), nil
}

func toSet(keys []string) map[string]struct{} {
	if len(keys) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
