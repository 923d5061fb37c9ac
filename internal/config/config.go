// Package config reads the TOML configuration file and hands out its top-level sections.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/roadrunner-server/errors"
)

// Plugin implements the Configurer interface on top of a TOML document.
type Plugin struct {
	// Path of the loaded file, empty for in-memory documents
	Path string

	sections map[string]toml.Primitive
	meta     toml.MetaData
}

// NewFromFile loads the file. A missing file yields an empty configuration when optional is true.
func NewFromFile(path string, optional bool) (*Plugin, error) {
	const op = errors.Op("config_new_from_file")

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return &Plugin{Path: path, sections: map[string]toml.Primitive{}}, nil
		}
		return nil, errors.E(op, err)
	}

	p, err := NewFromBytes(data)
	if err != nil {
		return nil, errors.E(op, errors.Errorf("%s: %v", path, err))
	}

	p.Path = path
	return p, nil
}

func NewFromBytes(data []byte) (*Plugin, error) {
	const op = errors.Op("config_new_from_bytes")

	p := &Plugin{sections: map[string]toml.Primitive{}}
	meta, err := toml.Decode(string(data), &p.sections)
	if err != nil {
		return nil, errors.E(op, err)
	}

	p.meta = meta
	return p, nil
}

// Has checks if config section exists.
func (p *Plugin) Has(name string) bool {
	_, ok := p.sections[name]
	return ok
}

// UnmarshalKey decodes the named section into out.
func (p *Plugin) UnmarshalKey(name string, out any) error {
	const op = errors.Op("config_unmarshal_key")

	section, ok := p.sections[name]
	if !ok {
		return errors.E(op, errors.Errorf("no such section: %s", name))
	}

	err := p.meta.PrimitiveDecode(section, out)
	if err != nil {
		return errors.E(op, err)
	}

	return nil
}

// Undecoded returns the keys present in the document but not consumed by UnmarshalKey.
func (p *Plugin) Undecoded() []string {
	keys := p.meta.Undecoded()
	out := make([]string, 0, len(keys))
	for i := 0; i < len(keys); i++ {
		out = append(out, keys[i].String())
	}
	return out
}
