package pipeline

import (
	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// Load reads the schema named by opts.Input, detecting the format from the
// file extension unless opts.InputType is set.
func Load(opts Options) (*schema.Schema, error) {
	if opts.Input == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input schema file is required")
	}
	return schema.LoadFile(opts.Input, opts.InputType)
}
