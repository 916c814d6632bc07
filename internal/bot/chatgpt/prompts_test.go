package chatgpt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSystem(t *testing.T) {
	got, err := RenderSystem(context.Background(), "@ChatGPTBot")
	require.NoError(t, err)
	assert.Contains(t, got, "through the account @ChatGPTBot.")
	assert.NotContains(t, got, "{{")
}
