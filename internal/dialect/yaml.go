// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialect

import (
	"errors"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// YAMLKeys returns every mapping key in body, recursively. Multi-document
// streams are supported.
func YAMLKeys(body string) ([]string, error) {
	dec := yaml.NewDecoder(strings.NewReader(body))
	var keys []string
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = collectYAMLKeys(&node, keys)
	}
}

func collectYAMLKeys(n *yaml.Node, keys []string) []string {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			keys = collectYAMLKeys(c, keys)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			// "<<" merge keys pull in an alias, not a key of their own.
			if k.Tag != "!!merge" {
				keys = append(keys, k.Value)
			}
			keys = collectYAMLKeys(v, keys)
		}
	}
	return keys
}
