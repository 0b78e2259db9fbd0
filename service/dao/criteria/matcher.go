package criteria

import (
	"strings"

	"github.com/viant/gxl/service/dao"
)

// Match reports whether attribute values satisfy every parameter; unknown parameter names match.
func Match(attributes map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		actual, ok := attributes[strings.ToLower(parameter.Name)]
		if !ok {
			continue
		}
		if !matchValue(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matchValue(actual string, expected interface{}) bool {
	switch expect := expected.(type) {
	case string:
		return strings.EqualFold(actual, expect)
	case []string:
		for _, candidate := range expect {
			if strings.EqualFold(actual, candidate) {
				return true
			}
		}
		return false
	}
	return true
}
