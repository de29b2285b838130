package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

// ErrInvalidColumnConfig wraps any failure to read a column configuration.
var ErrInvalidColumnConfig = errors.New("invalid column config")

// ParseColumnConfig reads a column configuration document. JSON objects are
// decoded as JSON; anything else is read as YAML:
//
//	User.UserAttributes.Edad:
//	  type: integer
//	  required: true
//	Metrics.Alta:
//	  type: Fecha (AAAA-MM-DD)
//
// Type accepts English names and the form labels. An empty document yields
// an empty configuration.
func ParseColumnConfig(data []byte) (validator.ColumnConfig, error) {
	cfg := make(validator.ColumnConfig)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return cfg, nil
	}

	var err error
	if trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &cfg)
	} else {
		err = yaml.Unmarshal(trimmed, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidColumnConfig, err)
	}

	for name := range cfg {
		if name == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrInvalidColumnConfig)
		}
	}
	return cfg, nil
}
