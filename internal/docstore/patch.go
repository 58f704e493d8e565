package docstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/traiteur/internal/models"
)

var (
	ErrInvalidPath = errors.New("docstore: invalid path")
	ErrConfigReset = errors.New("docstore: the config collection cannot be reset")
)

// Patch maps write paths to values. A nil value deletes. Supported paths:
//
//	<collection>/<id>            whole document
//	config                       whole config document
//	config/<field>               one config field
//	config/<field>/<key>         one entry of a keyed config field
type Patch map[string]any

// path is a parsed Patch key.
type path struct {
	collection string
	id         string
	field      string
	key        string
}

func parsePath(raw string) (path, error) {
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) == 0 || !models.IsCollection(parts[0]) {
		return path{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}
	for _, p := range parts {
		if p == "" {
			return path{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
	}
	p := path{collection: parts[0]}
	if p.collection == models.CollectionConfig {
		switch len(parts) {
		case 1:
		case 2:
			p.field = parts[1]
		case 3:
			p.field, p.key = parts[1], parts[2]
		default:
			return path{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
		}
		p.id = ConfigKey
		return p, nil
	}
	if len(parts) != 2 {
		return path{}, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}
	p.id = parts[1]
	return p, nil
}
