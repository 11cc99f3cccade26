package action

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// pyLiteral renders a decoded JSON value as a Python literal. Numbers come
// out of encoding/json as float64; integral values are printed without a
// fractional part so coordinates stay readable.
func pyLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case string:
		return pyString(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = pyLiteral(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = pyString(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// pyString single-quotes a string with minimal escaping.
func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// call assembles "<fn>(<args>)" from positional values and keyword pairs.
func call(fn string, positional []string, kwargs []string) string {
	all := make([]string, 0, len(positional)+len(kwargs))
	all = append(all, positional...)
	all = append(all, kwargs...)
	return fn + "(" + strings.Join(all, ", ") + ")"
}

// take pops the first present key from args and returns its value plus a
// copy of the map without any of the aliases.
func take(args map[string]any, keys ...string) (any, bool, map[string]any) {
	var value any
	found := false
	aliases := make(map[string]bool, len(keys))
	for _, k := range keys {
		aliases[k] = true
		if v, ok := args[k]; ok && !found {
			value = v
			found = true
		}
	}
	rest := make(map[string]any, len(args))
	for k, v := range args {
		if !aliases[k] {
			rest[k] = v
		}
	}
	return value, found, rest
}

// kwargsFor emits "name=literal" pairs for the listed arg names that are
// present, preserving the given order. Names outside the list are appended
// alphabetically so no recorded argument is silently lost.
func kwargsFor(args map[string]any, names ...string) []string {
	out := make([]string, 0, len(args))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
		if v, ok := args[n]; ok {
			out = append(out, n+"="+pyLiteral(v))
		}
	}
	rest := make([]string, 0, len(args))
	for k := range args {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, k+"="+pyLiteral(args[k]))
	}
	return out
}
