package plansolve

import (
	"regexp"
	"sort"
	"strconv"
)

// placeholderPattern matches {stepN} tokens inside a step input.
var placeholderPattern = regexp.MustCompile(`\{step([0-9]+)\}`)

// ScanRefs returns the distinct step indices referenced by placeholder
// tokens in template, in ascending order.
func ScanRefs(template string) []int {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(matches))
	refs := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		refs = append(refs, n)
	}
	sort.Ints(refs)
	return refs
}

// SubstitutePlaceholders replaces every {stepN} token using lookup. Tokens
// whose index lookup reports as unknown are left verbatim; the parser
// guarantees that cannot happen for validated plans.
func SubstitutePlaceholders(template string, lookup func(index int) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		sub := placeholderPattern.FindStringSubmatch(token)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return token
		}
		if text, ok := lookup(n); ok {
			return text
		}
		return token
	})
}
