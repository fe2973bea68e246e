package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

func TestRuntimeConfigSchema(t *testing.T) {
	data, err := RuntimeConfigSchema()
	require.NoError(t, err)

	decoded := decode(t, data)
	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	assert.Contains(t, properties, "log_level")
	assert.Contains(t, properties, "max_objects")
	assert.Contains(t, properties, "protect_stack_size")
	assert.Contains(t, properties, "warn_level")
	assert.Contains(t, properties, "full_backtrace")

	required, ok := decoded["required"].([]any)
	require.True(t, ok, "required should be an array")
	assert.Contains(t, required, "max_objects")
	assert.NotContains(t, required, "log_level")
}

func TestGenerateSchema_ExtensionModel(t *testing.T) {
	type Seq struct {
		Start int32 `json:"start"`
		Len   int32 `json:"len" jsonschema:"minimum=0"`
	}

	data, err := GenerateSchema(Seq{})
	require.NoError(t, err)

	decoded := decode(t, data)
	properties := decoded["properties"].(map[string]any)
	require.Len(t, properties, 2)
	length := properties["len"].(map[string]any)
	assert.Equal(t, "integer", length["type"])
	assert.EqualValues(t, 0, length["minimum"])
}

func TestGenerateSchema_OptionalFields(t *testing.T) {
	type Person struct {
		Name     string   `json:"name"`
		Nickname *string  `json:"nickname,omitempty"`
		Tags     []string `json:"tags,omitempty"`
	}

	data, err := GenerateSchema(Person{})
	require.NoError(t, err)

	decoded := decode(t, data)
	required, ok := decoded["required"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"name"}, required)
	assert.Contains(t, string(data), "nickname")
	assert.Contains(t, string(data), "tags")
}

func TestGenerateSchema_EmptyStruct(t *testing.T) {
	type Empty struct{}

	data, err := GenerateSchema(Empty{})
	require.NoError(t, err)
	assert.NotEmpty(t, decode(t, data))
}
