// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dialect

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// JSONKeys returns every object key in body, recursively. Keys of one object
// are visited in sorted order since decoded maps carry no order.
func JSONKeys(body string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var keys []string
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = collectTreeKeys(v, keys)
	}
}

// TOMLKeys returns every table key in body, recursively.
func TOMLKeys(body string) ([]string, error) {
	var v map[string]any
	if err := toml.Unmarshal([]byte(body), &v); err != nil {
		return nil, err
	}
	return collectTreeKeys(v, nil), nil
}

func collectTreeKeys(v any, keys []string) []string {
	switch t := v.(type) {
	case map[string]any:
		names := make([]string, 0, len(t))
		for k := range t {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			keys = append(keys, k)
			keys = collectTreeKeys(t[k], keys)
		}
	case []any:
		for _, e := range t {
			keys = collectTreeKeys(e, keys)
		}
	case []map[string]any:
		for _, e := range t {
			keys = collectTreeKeys(e, keys)
		}
	}
	return keys
}
