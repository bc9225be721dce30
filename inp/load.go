// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"fmt"
	"os"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"
)

// allowedTopLevelKeys mirrors the original check_input_consistency: the
// required sections plus the four optional ones. Anything else is fatal.
var allowedTopLevelKeys = map[string]bool{
	"input_beam":                  true,
	"input_lattice":               true,
	"particle_deposition":         true,
	"distribution_interpolation":  true,
	"CSR_integration":             true,
	"CSR_computation":             true,
}

var requiredTopLevelKeys = []string{"input_beam", "input_lattice"}

// Load reads and validates a YAML configuration file. Unknown top-level
// keys and missing required sections are configuration errors (fatal);
// missing optional sections fall back to defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read configuration file %q: %v", path, err)
	}

	// decode once as a generic mapping node to validate the key set
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, chk.Err("cannot parse configuration file %q: %v", path, err)
	}
	if err := checkKeys(&root); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, chk.Err("cannot decode configuration file %q: %v", path, err)
	}
	cfg.SetDefault()
	return &cfg, nil
}

// checkKeys walks the top-level mapping and rejects unrecognized keys,
// reproducing the original's allowed_params assertion
func checkKeys(root *yaml.Node) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return chk.Err("empty or malformed configuration document")
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return chk.Err("configuration document must be a mapping at the top level")
	}
	seen := make(map[string]bool)
	for i := 0; i < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if !allowedTopLevelKeys[key] {
			return chk.Err("unrecognized configuration key %q; allowed: %v", key, allowedKeysList())
		}
		seen[key] = true
	}
	for _, req := range requiredTopLevelKeys {
		if !seen[req] {
			return chk.Err("required configuration section %q not found", req)
		}
	}
	return nil
}

func allowedKeysList() []string {
	keys := make([]string, 0, len(allowedTopLevelKeys))
	for k := range allowedTopLevelKeys {
		keys = append(keys, k)
	}
	return keys
}

// String implements fmt.Stringer for diagnostic printing of the element kind
func (k ElementKind) String() string {
	return string(k)
}

var _ fmt.Stringer = ElementKind("")
