package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gxl/service/dao"
)

func TestMatch(t *testing.T) {
	attributes := map[string]string{"status": "failure", "name": "gxl"}
	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no parameters", expect: true},
		{description: "single value", parameters: []*dao.Parameter{dao.NewParameter("Status", "Failure")}, expect: true},
		{description: "any of values", parameters: []*dao.Parameter{dao.NewParameter("status", "success", "failure")}, expect: true},
		{description: "mismatch", parameters: []*dao.Parameter{dao.NewParameter("status", "success")}, expect: false},
		{description: "unknown attribute", parameters: []*dao.Parameter{dao.NewParameter("owner", "x")}, expect: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.EqualValues(t, testCase.expect, Match(attributes, testCase.parameters))
		})
	}
}
