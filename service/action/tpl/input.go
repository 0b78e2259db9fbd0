package tpl

import "strings"

// Input represents a template rendering call
type Input struct {
	Src  string                 `json:"src,omitempty" description:"handlebars template location"`
	Dst  string                 `json:"dst,omitempty" description:"output location, defaults to src without .tpl"`
	Data map[string]interface{} `json:"data,omitempty" description:"template data, defaults to the variable space"`
}

// Init applies defaults
func (i *Input) Init() {
	if i.Dst == "" && strings.HasSuffix(i.Src, ".tpl") {
		i.Dst = strings.TrimSuffix(i.Src, ".tpl")
	}
}

// Output represents a rendered template
type Output struct {
	Dst   string    `json:"dst,omitempty"`
	Stats DiffStats `json:"stats,omitempty"`
}
