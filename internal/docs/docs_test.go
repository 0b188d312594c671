package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocIsRegistered(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var parsed struct {
		Swagger string                            `json:"swagger"`
		Paths   map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "2.0", parsed.Swagger)
	assert.Contains(t, parsed.Paths["/users"], "get")
	assert.Contains(t, parsed.Paths["/users"], "post")
	assert.Contains(t, parsed.Paths["/videos"], "get")
	assert.Contains(t, parsed.Paths["/videos/upload"], "post")
	assert.Contains(t, parsed.Paths["/videos/{id}"], "get")
	assert.Contains(t, parsed.Paths["/videos/{id}"], "patch")
}
