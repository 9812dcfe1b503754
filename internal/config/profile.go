package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// Profile is a saved set of conversion settings. Unset fields leave the
// current value alone.
type Profile struct {
	Delimiter *string `json:"delimiter" yaml:"delimiter"`
	EOL       *string `json:"eol" yaml:"eol"`
	Header    *bool   `json:"header" yaml:"header"`
	Empty     *string `json:"empty" yaml:"empty"`
	Mode      *string `json:"mode" yaml:"mode"`
	KeepExtra *bool   `json:"keepExtra" yaml:"keepExtra"`
}

// LoadProfile reads a JSON or YAML profile, picked by file extension.
func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
	case ".json":
		if err := sonic.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
	default:
		return nil, errors.New("unsupported profile format (use .json or .yaml/.yml)")
	}
	return &p, nil
}

// Apply overrides the conversion defaults with the fields set in p.
func (c *Config) Apply(p *Profile) {
	if p == nil {
		return
	}
	if p.Delimiter != nil {
		c.Delimiter = *p.Delimiter
	}
	if p.EOL != nil {
		c.EOL = *p.EOL
	}
	if p.Header != nil {
		c.HasHeader = *p.Header
	}
	if p.Empty != nil {
		c.Empty = *p.Empty
	}
	if p.Mode != nil {
		c.Mode = *p.Mode
	}
	if p.KeepExtra != nil {
		c.KeepExtra = *p.KeepExtra
	}
}
