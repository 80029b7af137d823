// Package query evaluates boolean/wildcard tag expressions.
//
// The evaluator is stateless: it reads a tag index snapshot through the
// Index interface and returns the matching file set. The grammar, in
// descending order of splitting:
//
//	expr OR expr     union
//	expr AND expr    intersection
//	NOT expr         complement against the universe of tagged files
//	(expr)           grouping
//	type:*  *:value  wildcard match against every known tag
//	type:value       exact tag lookup
//
// Operator splitting is parenthesis-depth-aware: an operator inside
// parentheses never causes a top-level split, so "a AND (b OR c)" is an
// AND of two operands.
package query

import (
	"strings"

	"github.com/reprintx/code-nexus/internal/nexuserr"
)

// Index is the read-only tag index view the evaluator works against.
type Index interface {
	// FilesWithTag returns the files carrying the exact tag; nil when
	// the tag is unknown.
	FilesWithTag(tag string) map[string]struct{}
	// TagStrings returns every known full tag string.
	TagStrings() []string
	// Universe returns every file that has at least one tag.
	Universe() map[string]struct{}
}

// Evaluate parses and evaluates expr against idx. An empty expression
// yields an empty result set, not an error; an unknown tag likewise.
func Evaluate(expr string, idx Index) (map[string]struct{}, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return map[string]struct{}{}, nil
	}

	if parts, err := splitTopLevel(expr, " OR "); err != nil {
		return nil, err
	} else if len(parts) > 1 {
		result := map[string]struct{}{}
		for _, part := range parts {
			sub, err := Evaluate(part, idx)
			if err != nil {
				return nil, err
			}
			for f := range sub {
				result[f] = struct{}{}
			}
		}
		return result, nil
	}

	if parts, err := splitTopLevel(expr, " AND "); err != nil {
		return nil, err
	} else if len(parts) > 1 {
		result, err := Evaluate(parts[0], idx)
		if err != nil {
			return nil, err
		}
		for _, part := range parts[1:] {
			sub, err := Evaluate(part, idx)
			if err != nil {
				return nil, err
			}
			for f := range result {
				if _, ok := sub[f]; !ok {
					delete(result, f)
				}
			}
		}
		return result, nil
	}

	if inner, ok := strings.CutPrefix(expr, "NOT "); ok {
		matched, err := Evaluate(inner, idx)
		if err != nil {
			return nil, err
		}
		result := map[string]struct{}{}
		for f := range idx.Universe() {
			if _, ok := matched[f]; !ok {
				result[f] = struct{}{}
			}
		}
		return result, nil
	}

	if inner, ok := stripOuterParens(expr); ok {
		return Evaluate(inner, idx)
	}

	if strings.Contains(expr, "*") {
		result := map[string]struct{}{}
		for _, tag := range idx.TagStrings() {
			if matchWildcard(expr, tag) {
				for f := range idx.FilesWithTag(tag) {
					result[f] = struct{}{}
				}
			}
		}
		return result, nil
	}

	// Exact literal. Copy so callers can't mutate the live index.
	result := map[string]struct{}{}
	for f := range idx.FilesWithTag(expr) {
		result[f] = struct{}{}
	}
	return result, nil
}

// splitTopLevel splits expr on op occurrences at parenthesis depth zero.
// Unbalanced parentheses are a syntax error.
func splitTopLevel(expr, op string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, nexuserr.InvalidQuerySyntax("unbalanced parentheses")
			}
		default:
			if depth == 0 && strings.HasPrefix(expr[i:], op) {
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				i += len(op) - 1
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, nexuserr.InvalidQuerySyntax("unbalanced parentheses")
	}
	parts = append(parts, strings.TrimSpace(expr[start:]))
	if len(parts) > 1 {
		for _, p := range parts {
			if p == "" {
				return nil, nexuserr.InvalidQuerySyntax("empty operand around " + strings.TrimSpace(op))
			}
		}
	}
	return parts, nil
}

// stripOuterParens reports whether expr is fully enclosed by one pair of
// parentheses and returns the inner expression if so. "(a) AND (b)" is
// not enclosed: its first paren closes before the end.
func stripOuterParens(expr string) (string, bool) {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return "", false
	}
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i < len(expr)-1 {
				return "", false
			}
		}
	}
	return strings.TrimSpace(expr[1 : len(expr)-1]), true
}

// matchWildcard matches s against pattern where * stands for zero or
// more characters: literal segments are anchored before, between and
// after the * occurrences.
func matchWildcard(pattern, s string) bool {
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, segments[0]) {
		return false
	}
	s = s[len(segments[0]):]

	last := segments[len(segments)-1]
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		i := strings.Index(s, seg)
		if i < 0 {
			return false
		}
		s = s[i+len(seg):]
	}

	return strings.HasSuffix(s, last)
}

// ValidateSyntax is a shallow pre-check catching the cheapest malformed
// cases. It does not guarantee the expression is fully evaluable.
func ValidateSyntax(expr string) error {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nexuserr.InvalidQuerySyntax("query must not be empty")
	}

	if strings.Contains(trimmed, " AND ") {
		for _, part := range strings.Split(trimmed, " AND ") {
			if strings.TrimSpace(part) == "" {
				return nexuserr.InvalidQuerySyntax("AND operands must not be empty")
			}
		}
	}

	// A single colon-containing token must look like type:value.
	if strings.Contains(trimmed, ":") && !strings.Contains(trimmed, " ") {
		if strings.Count(trimmed, ":") != 1 {
			return nexuserr.InvalidQuerySyntax("tag must be of the form type:value")
		}
	}

	return nil
}
