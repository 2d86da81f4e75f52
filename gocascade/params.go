package gocascade

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Validate returns ErrBadParam if p cannot define a cascade.
func (p Params) Validate() error {
	switch {
	case p.BoundScale < 0:
		return errors.Wrapf(ErrBadParam, "bound_scale must be >= 0 (got %d)", p.BoundScale)
	case p.BoundOffset < 0:
		return errors.Wrapf(ErrBadParam, "bound_offset must be >= 0 (got %d)", p.BoundOffset)
	case p.CorrectionModulus <= 0:
		return errors.Wrapf(ErrBadParam, "correction_modulus must be > 0 (got %d)", p.CorrectionModulus)
	case p.SearchFactor <= 0:
		return errors.Wrapf(ErrBadParam, "search_factor must be > 0 (got %d)", p.SearchFactor)
	}
	return nil
}

// ParseParams reads YAML params; fields not present keep their DefaultParams value.
func ParseParams(in []byte) (Params, error) {
	p := DefaultParams
	if err := yaml.Unmarshal(in, &p); err != nil {
		return DefaultParams, errors.Wrap(ErrBadParam, err.Error())
	}
	if err := p.Validate(); err != nil {
		return DefaultParams, err
	}
	return p, nil
}

// LoadParams reads a YAML params file.  An empty pathname returns DefaultParams.
func LoadParams(pathname string) (Params, error) {
	if pathname == "" {
		return DefaultParams, nil
	}
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return DefaultParams, errors.Wrapf(err, "reading params %q", pathname)
	}
	return ParseParams(buf)
}
