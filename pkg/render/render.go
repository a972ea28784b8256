// Package render applies a resolved configuration context to template
// strings and to path strings. The substitution grammar itself is
// mustache, treated as an opaque renderer; what this package owns is
// the per-segment path rendering and the missing-key policy.
package render

import (
	"path/filepath"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/logging"
)

// Text renders a template string against the context. Malformed
// template syntax is a fatal RENDER_SYNTAX error; an unresolved
// placeholder renders as the empty string and logs a warning, because
// templates frequently contain optional sections guarded by the
// grammar's own conditionals.
func Text(template string, ctx config.Context) (string, error) {
	tmpl, err := mustache.ParseString(template)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrRenderSyntax, "malformed template syntax")
	}

	warnUnresolved(tmpl, ctx)

	out, err := tmpl.Render(map[string]interface{}(ctx))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrRenderSyntax, "failed to render template")
	}
	return out, nil
}

// Path renders placeholders inside a relative path, substituting into
// each segment independently so a directory or file name containing a
// placeholder resolves before any filesystem operation touches it.
func Path(path string, ctx config.Context) (string, error) {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, segment := range segments {
		rendered, err := Text(segment, ctx)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrRenderSyntax, "malformed placeholder in path %q", path).
				WithDetail("path", path)
		}
		segments[i] = rendered
	}
	return filepath.FromSlash(strings.Join(segments, "/")), nil
}

// ReferencedKeys lists the variable names a template body references,
// including variables inside sections. Used to decide which declared
// custom keys need an interactive answer.
func ReferencedKeys(template string) ([]string, error) {
	tmpl, err := mustache.ParseString(template)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRenderSyntax, "malformed template syntax")
	}

	seen := make(map[string]bool)
	var keys []string
	var walk func(tags []mustache.Tag)
	walk = func(tags []mustache.Tag) {
		for _, tag := range tags {
			name := tag.Name()
			if name != "" && name != "." && !seen[name] {
				seen[name] = true
				keys = append(keys, name)
			}
			if tag.Type() == mustache.Section || tag.Type() == mustache.InvertedSection {
				walk(tag.Tags())
			}
		}
	}
	walk(tmpl.Tags())
	return keys, nil
}

// warnUnresolved logs top-level variable tags with no binding in the
// context. Section names are skipped: an absent section key is the
// grammar's way of expressing an optional block.
func warnUnresolved(tmpl *mustache.Template, ctx config.Context) {
	log := logging.GetLogger("render")
	for _, tag := range tmpl.Tags() {
		if tag.Type() != mustache.Variable {
			continue
		}
		name := tag.Name()
		if name == "." || strings.Contains(name, ".") {
			continue
		}
		if !ctx.Has(name) {
			log.Warn().Str("key", name).Msg("Unresolved placeholder, rendering as empty string")
		}
	}
}
