package config

import (
	"dario.cat/mergo"

	"github.com/arthur-debert/pi/pkg/errors"
)

// Context is the merged key/value data bound into templates at render
// time. Values are strings, booleans, nested Contexts (as
// map[string]interface{}), or ordered lists for repeated sections.
// Keys are case-sensitive.
type Context map[string]interface{}

// NewContext returns an empty Context
func NewContext() Context {
	return make(Context)
}

// Merge folds other into c. Scalar keys in other overwrite the same
// key in c; nested tables merge field-wise, so a later source that
// sets only one field of a table does not erase the rest.
func (c Context) Merge(other Context) error {
	if len(other) == 0 {
		return nil
	}
	dst := map[string]interface{}(c)
	if err := mergo.Merge(&dst, map[string]interface{}(other), mergo.WithOverride); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to merge configuration contexts")
	}
	return nil
}

// Has reports whether key is bound in the context
func (c Context) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// GetString returns the string bound to key, or "" when the key is
// absent or not a string
func (c Context) GetString(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// Table returns the nested table bound to key, or nil
func (c Context) Table(key string) map[string]interface{} {
	if v, ok := c[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
