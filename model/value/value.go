package value

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
)

// Kind is a value variant.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindIP
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindIP:
		return "ip"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	}
	return "null"
}

// Mask is the rendering of a secret value in logs.
const Mask = "***"

// Value is a tagged variant with a secret flag on each leaf.
type Value struct {
	Kind   Kind
	Str    string
	Bool   bool
	Int    int64
	Float  float64
	IP     net.IP
	List   []Value
	Object Object
	Secret bool
	// masked holds the log rendering of a string built by substitution from secret parts.
	masked string
}

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

func IP(ip net.IP) Value { return Value{Kind: KindIP, IP: ip} }

func List(items ...Value) Value { return Value{Kind: KindList, List: items} }

func NewObject(obj Object) Value {
	if obj == nil {
		obj = Object{}
	}
	return Value{Kind: KindObject, Object: obj}
}

// SecretString returns a secret string leaf.
func SecretString(s string) Value { return Value{Kind: KindString, Str: s, Secret: true} }

// Derived returns a string built by substitution; secret when any part was secret.
func Derived(raw, masked string, secret bool) Value {
	ret := Value{Kind: KindString, Str: raw, Secret: secret}
	if secret {
		ret.masked = masked
	}
	return ret
}

// AsSecret returns a copy with every leaf flagged secret.
func (v Value) AsSecret() Value {
	switch v.Kind {
	case KindList:
		items := make([]Value, len(v.List))
		for i, item := range v.List {
			items[i] = item.AsSecret()
		}
		v.List = items
	case KindObject:
		obj := make(Object, len(v.Object))
		for k, item := range v.Object {
			obj[k] = item.AsSecret()
		}
		v.Object = obj
	}
	v.Secret = true
	return v
}

// IsSecret reports whether the value or any nested leaf is secret.
func (v Value) IsSecret() bool {
	if v.Secret {
		return true
	}
	switch v.Kind {
	case KindList:
		for _, item := range v.List {
			if item.IsSecret() {
				return true
			}
		}
	case KindObject:
		for _, item := range v.Object {
			if item.IsSecret() {
				return true
			}
		}
	}
	return false
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Raw renders the real contents, used for command arguments and file output.
func (v Value) Raw() string {
	return v.render(false)
}

// Display renders the value for logs: secret leaves become ***.
func (v Value) Display() string {
	return v.render(true)
}

func (v Value) String() string {
	return v.Display()
}

func (v Value) render(mask bool) string {
	if mask && v.Secret && v.Kind != KindList && v.Kind != KindObject {
		if v.masked != "" {
			return v.masked
		}
		return Mask
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindIP:
		return v.IP.String()
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.render(mask)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindObject:
		keys := v.Object.Keys()
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = key + ":" + v.Object[key].render(mask)
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}

// Truthy reports the boolean interpretation used by bare conditions.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindString:
		s := strings.ToLower(strings.TrimSpace(v.Str))
		return s != "" && s != "false" && s != "0" && s != "no"
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindIP:
		return len(v.IP) > 0
	case KindList:
		return len(v.List) > 0
	case KindObject:
		return len(v.Object) > 0
	}
	return false
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindList:
		items := make([]Value, len(v.List))
		for i, item := range v.List {
			items[i] = item.Clone()
		}
		v.List = items
	case KindObject:
		v.Object = v.Object.Clone()
	case KindIP:
		v.IP = append(net.IP(nil), v.IP...)
	}
	return v
}

// Equal compares values structurally, ignoring secret flags.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.Object) != len(o.Object) {
			return false
		}
		for k, item := range v.Object {
			other, ok := o.Object[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	case KindIP:
		return v.IP.Equal(o.IP)
	}
	return v.Raw() == o.Raw()
}

// Index returns the i-th list item.
func (v Value) Index(i int) (Value, bool) {
	if v.Kind != KindList || i < 0 || i >= len(v.List) {
		return Value{}, false
	}
	return v.List[i], true
}

// Field returns the object field with the case-insensitive key.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	return v.Object.Get(name)
}

// Object maps case-insensitive keys to values; keys are stored upper-cased.
type Object map[string]Value

// Key returns the canonical form of a key.
func Key(name string) string {
	return strings.ToUpper(name)
}

func (o Object) Get(name string) (Value, bool) {
	v, ok := o[Key(name)]
	return v, ok
}

func (o Object) Set(name string, v Value) {
	o[Key(name)] = v
}

func (o Object) Delete(name string) {
	delete(o, Key(name))
}

// Keys returns sorted keys.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o Object) Clone() Object {
	ret := make(Object, len(o))
	for k, v := range o {
		ret[k] = v.Clone()
	}
	return ret
}

// Parse converts a literal text into the most specific scalar value.
func Parse(text string) Value {
	trimmed := strings.TrimSpace(text)
	switch strings.ToLower(trimmed) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Float(f)
	}
	if strings.ContainsAny(trimmed, ".:") {
		if ip := net.ParseIP(trimmed); ip != nil {
			return IP(ip)
		}
	}
	return String(text)
}

// GoString is used by %#v.
func (v Value) GoString() string {
	return fmt.Sprintf("value.%s(%q)", v.Kind, v.Display())
}
