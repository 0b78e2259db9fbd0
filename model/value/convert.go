package value

import (
	"fmt"
	"net"
	"reflect"
	"sort"
	"time"
)

// From converts a decoded Go value (yaml, json, plist, literals) into a Value.
func From(v interface{}) Value {
	switch actual := v.(type) {
	case nil:
		return Value{}
	case Value:
		return actual
	case string:
		return String(actual)
	case bool:
		return Bool(actual)
	case int:
		return Int(int64(actual))
	case int8:
		return Int(int64(actual))
	case int16:
		return Int(int64(actual))
	case int32:
		return Int(int64(actual))
	case int64:
		return Int(actual)
	case uint:
		return Int(int64(actual))
	case uint8:
		return Int(int64(actual))
	case uint16:
		return Int(int64(actual))
	case uint32:
		return Int(int64(actual))
	case uint64:
		return Int(int64(actual))
	case float32:
		return Float(float64(actual))
	case float64:
		if actual == float64(int64(actual)) && actual < 1<<53 && actual > -(1<<53) {
			return Int(int64(actual))
		}
		return Float(actual)
	case net.IP:
		return IP(actual)
	case time.Time:
		return String(actual.Format(time.RFC3339))
	case []byte:
		return String(string(actual))
	case []interface{}:
		items := make([]Value, len(actual))
		for i, item := range actual {
			items[i] = From(item)
		}
		return List(items...)
	case []string:
		items := make([]Value, len(actual))
		for i, item := range actual {
			items[i] = String(item)
		}
		return List(items...)
	case map[string]interface{}:
		obj := make(Object, len(actual))
		for k, item := range actual {
			obj.Set(k, From(item))
		}
		return NewObject(obj)
	case map[interface{}]interface{}:
		obj := make(Object, len(actual))
		for k, item := range actual {
			obj.Set(fmt.Sprint(k), From(item))
		}
		return NewObject(obj)
	case map[string]string:
		obj := make(Object, len(actual))
		for k, item := range actual {
			obj.Set(k, String(item))
		}
		return NewObject(obj)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = From(rv.Index(i).Interface())
		}
		return List(items...)
	case reflect.Map:
		obj := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj.Set(fmt.Sprint(iter.Key().Interface()), From(iter.Value().Interface()))
		}
		return NewObject(obj)
	case reflect.Ptr:
		if rv.IsNil() {
			return Value{}
		}
		return From(rv.Elem().Interface())
	}
	return String(fmt.Sprint(v))
}

// Interface converts a Value into plain Go data using real (unmasked) contents.
// Object keys are lower-cased so templates and decoders see conventional names.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindIP:
		return v.IP.String()
	case KindList:
		ret := make([]interface{}, len(v.List))
		for i, item := range v.List {
			ret[i] = item.Interface()
		}
		return ret
	case KindObject:
		ret := make(map[string]interface{}, len(v.Object))
		for k, item := range v.Object {
			ret[lower(k)] = item.Interface()
		}
		return ret
	}
	return nil
}

// Strings converts a list (or a single scalar) into raw strings.
func (v Value) Strings() []string {
	switch v.Kind {
	case KindNull:
		return nil
	case KindList:
		ret := make([]string, len(v.List))
		for i, item := range v.List {
			ret[i] = item.Raw()
		}
		return ret
	case KindObject:
		keys := v.Object.Keys()
		sort.Strings(keys)
		return keys
	}
	return []string{v.Raw()}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
