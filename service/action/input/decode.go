package input

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/viant/gxl/model/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

type decoder func(location string, data []byte) (value.Value, error)

func decoderFor(location string) decoder {
	switch strings.ToLower(path.Ext(location)) {
	case ".json", ".yml", ".yaml":
		return decodeYAML
	case ".hcl", ".tfvars":
		return decodeHCL
	case ".plist":
		return decodePlist
	}
	return nil
}

// decodeYAML handles JSON as well, JSON being a YAML subset.
func decodeYAML(_ string, data []byte) (value.Value, error) {
	var decoded interface{}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return value.Value{}, err
	}
	return value.From(decoded), nil
}

func decodePlist(_ string, data []byte) (value.Value, error) {
	var decoded interface{}
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(&decoded); err != nil {
		return value.Value{}, err
	}
	return value.From(decoded), nil
}

// decodeHCL evaluates attributes without variables; blocks become nested objects keyed by type then labels.
func decodeHCL(location string, data []byte) (value.Value, error) {
	file, diags := hclsyntax.ParseConfig(data, location, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return value.Value{}, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return value.Value{}, fmt.Errorf("unsupported hcl body %T", file.Body)
	}
	obj, err := decodeBody(body)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewObject(obj), nil
}

func decodeBody(body *hclsyntax.Body) (value.Object, error) {
	ret := value.Object{}
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		converted, err := ctyToValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		ret.Set(name, converted)
	}
	for _, block := range body.Blocks {
		nested, err := decodeBody(block.Body)
		if err != nil {
			return nil, err
		}
		target := ret
		keys := append([]string{block.Type}, block.Labels...)
		for _, key := range keys[:len(keys)-1] {
			existing, ok := target.Get(key)
			if !ok || existing.Kind != value.KindObject {
				existing = value.NewObject(value.Object{})
				target.Set(key, existing)
			}
			target = existing.Object
		}
		target.Set(keys[len(keys)-1], value.NewObject(nested))
	}
	return ret, nil
}

func ctyToValue(v cty.Value) (value.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return value.Value{}, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return value.String(v.AsString()), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			var i int64
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return value.Int(i), nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case ty == cty.Bool:
		return value.Bool(v.True()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var items []value.Value
		for it := v.ElementIterator(); it.Next(); {
			_, item := it.Element()
			converted, err := ctyToValue(item)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, converted)
		}
		return value.List(items...), nil
	case ty.IsObjectType() || ty.IsMapType():
		obj := value.Object{}
		for it := v.ElementIterator(); it.Next(); {
			key, item := it.Element()
			converted, err := ctyToValue(item)
			if err != nil {
				return value.Value{}, err
			}
			obj.Set(key.AsString(), converted)
		}
		return value.NewObject(obj), nil
	}
	return value.Value{}, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
