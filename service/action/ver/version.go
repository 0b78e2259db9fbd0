package ver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version parts, most significant first.
const (
	Main    = "main"
	Feature = "feature"
	Bugfix  = "bugfix"
	Build   = "build"
)

var parts = []string{Main, Feature, Bugfix, Build}

// Version is a four part main.feature.bugfix.build number.
type Version [4]int

// Parse reads a version; missing trailing parts are zero and a leading v is ignored.
func Parse(text string) (Version, error) {
	var ret Version
	text = strings.TrimPrefix(strings.TrimSpace(text), "v")
	if text == "" {
		return ret, nil
	}
	items := strings.Split(text, ".")
	if len(items) > len(ret) {
		return ret, fmt.Errorf("invalid version %q: too many parts", text)
	}
	for i, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil || n < 0 {
			return ret, fmt.Errorf("invalid version %q: part %d", text, i+1)
		}
		ret[i] = n
	}
	return ret, nil
}

// Inc increments part and resets every less significant part.
func (v Version) Inc(part string) (Version, error) {
	for i, name := range parts {
		if !strings.EqualFold(name, part) {
			continue
		}
		v[i]++
		for j := i + 1; j < len(v); j++ {
			v[j] = 0
		}
		return v, nil
	}
	return v, fmt.Errorf("unknown version part %q, expected one of %s", part, strings.Join(parts, ", "))
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}
