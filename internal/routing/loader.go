package routing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of the routing configuration:
//
//	brokers:
//	  metaquotes:
//	    general: 2000
//	    EURUSD: 2001
type file struct {
	Brokers map[string]map[string]int `yaml:"brokers"`
}

// Load reads and validates the routing table from a YAML file. The table is
// loaded once at process start; changing the file requires a restart.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing file '%s': %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse routing file: %w", err)
	}

	return NewTable(f.Brokers)
}
