// Package config loads the small per-node JSON configuration blob
// (spec.md section 6): a node name and a list of resource names. None of
// the libraries wired elsewhere in this module (relt, logrus, cobra,
// prometheus/common) provide a config-file reader, and the document
// shape is a two-field flat object, so this is one of the few places
// the runtime reaches for encoding/json directly rather than a
// third-party config library.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultPort is the listen port a node binds when none is given.
const DefaultPort = 1234

// Node is a single node's static configuration. Resources is a list of
// resource names (spec.md section 6; original_source/pleroma_src's
// node_config.cpp builds the same list with resources.push_back("gpu")).
type Node struct {
	Name      string   `json:"name"`
	Resources []string `json:"resources"`
}

// Load reads and parses a node configuration file. Unknown keys are
// ignored by encoding/json's default unmarshalling behavior.
func Load(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Node{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return n, nil
}
