package value

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_Display(t *testing.T) {
	testCases := []struct {
		description string
		value       Value
		display     string
		raw         string
	}{
		{description: "plain string", value: String("abc"), display: "abc", raw: "abc"},
		{description: "secret string", value: SecretString("s3cret"), display: Mask, raw: "s3cret"},
		{description: "derived secret", value: Derived("X=s3cret", "X=***", true), display: "X=***", raw: "X=s3cret"},
		{description: "derived plain", value: Derived("X=1", "X=1", false), display: "X=1", raw: "X=1"},
		{description: "int", value: Int(42), display: "42", raw: "42"},
		{description: "float", value: Float(1.5), display: "1.5", raw: "1.5"},
		{description: "ip", value: IP(net.ParseIP("10.0.0.1")), display: "10.0.0.1", raw: "10.0.0.1"},
		{description: "list with secret", value: List(String("a"), SecretString("b")), display: "[a,***]", raw: "[a,b]"},
		{description: "object", value: NewObject(Object{"A": Int(1), "B": SecretString("x")}), display: "{A:1,B:***}", raw: "{A:1,B:x}"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.EqualValues(t, testCase.display, testCase.value.Display())
			assert.EqualValues(t, testCase.raw, testCase.value.Raw())
		})
	}
}

func TestObject_CaseInsensitive(t *testing.T) {
	obj := Object{}
	obj.Set("Root", String("/tmp"))
	v, ok := obj.Get("ROOT")
	assert.True(t, ok)
	assert.EqualValues(t, "/tmp", v.Raw())
	v, ok = NewObject(obj).Field("root")
	assert.True(t, ok)
	assert.EqualValues(t, "/tmp", v.Raw())
	obj.Set("root", String("/var"))
	assert.Len(t, obj, 1)
}

func TestValue_AsSecret(t *testing.T) {
	v := List(String("a"), NewObject(Object{"K": String("v")})).AsSecret()
	assert.True(t, v.IsSecret())
	assert.True(t, v.List[1].Object["K"].Secret)
	assert.False(t, String("a").IsSecret())
}

func TestParse(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		expect      Kind
	}{
		{description: "bool", text: "true", expect: KindBool},
		{description: "int", text: "12", expect: KindInt},
		{description: "float", text: "1.25", expect: KindFloat},
		{description: "ip", text: "192.168.1.1", expect: KindIP},
		{description: "string", text: "abc", expect: KindString},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.EqualValues(t, testCase.expect, Parse(testCase.text).Kind)
		})
	}
}

func TestFrom(t *testing.T) {
	v := From(map[string]interface{}{"name": "gxl", "tags": []interface{}{"a", 1}, "ratio": 0.5})
	assert.EqualValues(t, KindObject, v.Kind)
	name, _ := v.Field("NAME")
	assert.EqualValues(t, "gxl", name.Raw())
	tags, _ := v.Field("tags")
	assert.EqualValues(t, []string{"a", "1"}, tags.Strings())
	ratio, _ := v.Field("ratio")
	assert.EqualValues(t, KindFloat, ratio.Kind)
	assert.EqualValues(t, map[string]interface{}{"name": "gxl", "tags": []interface{}{"a", int64(1)}, "ratio": 0.5}, v.Interface())
}

func TestValue_Clone(t *testing.T) {
	orig := NewObject(Object{"L": List(String("a"))})
	clone := orig.Clone()
	clone.Object["L"].List[0] = String("b")
	assert.EqualValues(t, "a", orig.Object["L"].List[0].Raw())
	assert.True(t, orig.Equal(NewObject(Object{"L": List(String("a"))})))
}
