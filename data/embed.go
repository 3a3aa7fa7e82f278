package data

import (
	_ "embed"
)

// DefaultConfig is the YAML holding the default value of every config key
//
//go:embed config.default.yaml
var DefaultConfig []byte
