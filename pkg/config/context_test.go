// pkg/config/context_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test layered Context merging semantics

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pi/pkg/config"
)

func TestContextMerge_DisjointKeysUnion(t *testing.T) {
	a := config.Context{"license": "MIT", "version": "0.1.0"}
	b := config.Context{"version_control": "git"}

	require.NoError(t, a.Merge(b))

	assert.Equal(t, "MIT", a.GetString("license"))
	assert.Equal(t, "0.1.0", a.GetString("version"))
	assert.Equal(t, "git", a.GetString("version_control"))
}

func TestContextMerge_LaterSourceWinsScalars(t *testing.T) {
	global := config.Context{"version": "0.1.0", "license": "MIT"}
	tpl := config.Context{"version": "1.0.0"}

	require.NoError(t, global.Merge(tpl))

	assert.Equal(t, "1.0.0", global.GetString("version"), "template-local value should win")
	assert.Equal(t, "MIT", global.GetString("license"), "keys absent from the later source survive")
}

func TestContextMerge_NestedTablesMergeFieldWise(t *testing.T) {
	global := config.Context{
		"author": map[string]interface{}{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
		},
	}
	tpl := config.Context{
		"author": map[string]interface{}{
			"github_username": "ada",
		},
	}

	require.NoError(t, global.Merge(tpl))

	author := global.Table("author")
	require.NotNil(t, author)
	assert.Equal(t, "Ada Lovelace", author["name"])
	assert.Equal(t, "ada@example.com", author["email"])
	assert.Equal(t, "ada", author["github_username"])
}

func TestContextMerge_CustomKeysDoNotEraseSiblings(t *testing.T) {
	global := config.Context{
		"custom_keys": map[string]interface{}{
			"github_username": "ada",
		},
	}
	tpl := config.Context{
		"custom_keys": map[string]interface{}{
			"website": "https://example.com",
		},
	}

	require.NoError(t, global.Merge(tpl))

	custom := global.Table("custom_keys")
	require.NotNil(t, custom)
	assert.Equal(t, "ada", custom["github_username"])
	assert.Equal(t, "https://example.com", custom["website"])
}

func TestContextMerge_EmptyOtherIsNoop(t *testing.T) {
	ctx := config.Context{"project": "foo"}
	require.NoError(t, ctx.Merge(config.NewContext()))
	assert.Equal(t, config.Context{"project": "foo"}, ctx)
}

func TestContextKeysAreCaseSensitive(t *testing.T) {
	ctx := config.Context{"project": "foo"}
	require.NoError(t, ctx.Merge(config.Context{"Project": "Foo"}))

	assert.Equal(t, "foo", ctx.GetString("project"))
	assert.Equal(t, "Foo", ctx.GetString("Project"))
}
