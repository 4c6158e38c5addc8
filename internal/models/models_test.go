package models

import (
	"encoding/json"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONObject_SetKeepsFirstPosition(t *testing.T) {
	obj := NewJSONObject()
	obj.Set("b", 1)
	obj.Set("a", 2)
	obj.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, obj.Keys)
	assert.Equal(t, 2, obj.Len())
	v, ok := obj.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = obj.Get("missing")
	assert.False(t, ok)
}

func TestJSONObject_MarshalJSON(t *testing.T) {
	inner := NewJSONObject()
	inner.Set("z", true)
	inner.Set("y", nil)

	obj := NewJSONObject()
	obj.Set("name", "Ann \"A\"")
	obj.Set("age", json.Number("30"))
	obj.Set("tags", JSONArray{"x", inner})

	out, err := gojson.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ann \"A\"","age":30,"tags":["x",{"z":true,"y":null}]}`, string(out))

	empty, err := NewJSONObject().MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}
