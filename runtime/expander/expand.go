package expander

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
)

// MaxDepth bounds recursive expansion; self referencing variables fail once it is reached.
const MaxDepth = 32

// Lookup resolves a root variable name.
type Lookup interface {
	Lookup(name string) (value.Value, bool)
}

// Expand substitutes every ${path} reference in text and returns a string value.
// The result is secret when any substituted part was secret; its Display keeps
// literal parts and masks secret ones.
// $${ escapes a literal ${.
func Expand(text string, vars Lookup) (value.Value, error) {
	return expand(text, vars, 0)
}

// Resolve returns the typed referenced value when text is a single ${path}, otherwise Expand(text).
func Resolve(text string, vars Lookup) (value.Value, error) {
	if expr, ok := pureRef(text); ok {
		return resolvePath(expr, vars, 0)
	}
	return Expand(text, vars)
}

// ExpandValue expands every string leaf of v; a string that is a single reference keeps the
// referenced type.
func ExpandValue(v value.Value, vars Lookup) (value.Value, error) {
	switch v.Kind {
	case value.KindString:
		ret, err := Resolve(v.Str, vars)
		if err != nil {
			return ret, err
		}
		if v.Secret {
			ret = ret.AsSecret()
		}
		return ret, nil
	case value.KindList:
		items := make([]value.Value, len(v.List))
		for i, item := range v.List {
			expanded, err := ExpandValue(item, vars)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = expanded
		}
		ret := value.List(items...)
		ret.Secret = v.Secret
		return ret, nil
	case value.KindObject:
		obj := make(value.Object, len(v.Object))
		for k, item := range v.Object {
			expanded, err := ExpandValue(item, vars)
			if err != nil {
				return value.Value{}, err
			}
			obj[k] = expanded
		}
		ret := value.NewObject(obj)
		ret.Secret = v.Secret
		return ret, nil
	}
	return v, nil
}

func expand(text string, vars Lookup, depth int) (value.Value, error) {
	if !strings.Contains(text, "${") {
		return value.String(text), nil
	}
	raw := strings.Builder{}
	masked := strings.Builder{}
	secret := false
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "$${") {
			raw.WriteString("${")
			masked.WriteString("${")
			i += 3
			continue
		}
		if !strings.HasPrefix(text[i:], "${") {
			raw.WriteByte(text[i])
			masked.WriteByte(text[i])
			i++
			continue
		}
		end := matchingBrace(text, i+2)
		if end == -1 {
			raw.WriteString(text[i:])
			masked.WriteString(text[i:])
			break
		}
		part, err := resolvePath(text[i+2:end], vars, depth)
		if err != nil {
			return value.Value{}, err
		}
		raw.WriteString(part.Raw())
		masked.WriteString(part.Display())
		if part.IsSecret() {
			secret = true
		}
		i = end + 1
	}
	return value.Derived(raw.String(), masked.String(), secret), nil
}

func resolvePath(expr string, vars Lookup, depth int) (value.Value, error) {
	if depth >= MaxDepth {
		return value.Value{}, types.NewNoValError(fmt.Sprintf("%s: expansion depth %d exceeded", expr, MaxDepth))
	}
	v, err := Path(expr, vars)
	if err != nil {
		return v, err
	}
	if v.Kind == value.KindString && strings.Contains(v.Str, "${") {
		nested, err := expand(v.Str, vars, depth+1)
		if err != nil {
			return nested, err
		}
		if v.Secret {
			nested = nested.AsSecret()
		}
		return nested, nil
	}
	return v, nil
}

// Path walks a.b[0].c over vars; missing segments fail with NoVal naming the full path.
func Path(expr string, vars Lookup) (value.Value, error) {
	expr = strings.TrimSpace(expr)
	segments, err := split(expr)
	if err != nil {
		return value.Value{}, err
	}
	if len(segments) == 0 {
		return value.Value{}, types.NewNoValError(expr)
	}
	current, ok := vars.Lookup(segments[0].name)
	if !ok {
		return value.Value{}, types.NewNoValError(expr)
	}
	for _, segment := range segments[1:] {
		if segment.index >= 0 {
			current, ok = current.Index(segment.index)
		} else {
			current, ok = current.Field(segment.name)
		}
		if !ok {
			return value.Value{}, types.NewNoValError(expr)
		}
	}
	return current, nil
}

type segment struct {
	name  string
	index int
}

func split(expr string) ([]segment, error) {
	var ret []segment
	i := 0
	for i < len(expr) {
		switch expr[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(expr[i:], ']')
			if end == -1 {
				return nil, types.NewArgsError("invalid reference %q: missing ]", expr)
			}
			idx, err := strconv.Atoi(strings.TrimSpace(expr[i+1 : i+end]))
			if err != nil {
				return nil, types.NewArgsError("invalid reference %q: index %q", expr, expr[i+1:i+end])
			}
			ret = append(ret, segment{index: idx})
			i += end + 1
		default:
			start := i
			for i < len(expr) && expr[i] != '.' && expr[i] != '[' {
				i++
			}
			ret = append(ret, segment{name: strings.TrimSpace(expr[start:i]), index: -1})
		}
	}
	return ret, nil
}

func pureRef(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "${") || strings.HasPrefix(trimmed, "$${") {
		return "", false
	}
	end := matchingBrace(trimmed, 2)
	if end != len(trimmed)-1 {
		return "", false
	}
	return trimmed[2:end], true
}

func matchingBrace(text string, from int) int {
	depth := 0
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
