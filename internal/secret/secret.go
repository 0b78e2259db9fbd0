// Package secret loads the user secret file into SEC_<KEY> variables.
package secret

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gxl/model/value"
	"gopkg.in/yaml.v3"
)

const (
	// PathEnv overrides the secret file location.
	PathEnv = "GAL_SEC_FILE_PATH"
	// Prefix is prepended to every loaded key.
	Prefix = "SEC_"
)

var template = []byte(`# gxl secrets, exposed to flows as ${SEC_<KEY>} and always masked in output
example_token: "change-me"
`)

// Path returns the secret file location: $GAL_SEC_FILE_PATH or $HOME/.galaxy/sec_value.yml.
func Path() string {
	if location := os.Getenv(PathEnv); location != "" {
		return location
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".galaxy", "sec_value.yml")
}

// Load reads the YAML mapping at URL; a missing file is created from a template and yields no values.
// Nested mappings are flattened with an underscore.
func Load(ctx context.Context, fs afs.Service, URL string) (value.Object, error) {
	ret := value.Object{}
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err = fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(template)); err != nil {
			return nil, fmt.Errorf("failed to create secret file %s: %w", URL, err)
		}
		return ret, nil
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file %s: %w", URL, err)
	}
	var document yaml.Node
	if err = yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("invalid secret file %s: %w", URL, err)
	}
	if len(document.Content) == 0 {
		return ret, nil
	}
	root := document.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid secret file %s: expected mapping", URL)
	}
	collect(ret, Prefix, root)
	return ret, nil
}

func collect(dest value.Object, prefix string, node *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := prefix + strings.ToUpper(node.Content[i].Value)
		item := node.Content[i+1]
		switch item.Kind {
		case yaml.MappingNode:
			collect(dest, key+"_", item)
		case yaml.ScalarNode:
			dest.Set(key, value.SecretString(item.Value))
		case yaml.SequenceNode:
			var items []value.Value
			for _, element := range item.Content {
				items = append(items, value.SecretString(element.Value))
			}
			dest.Set(key, value.List(items...))
		}
	}
}
