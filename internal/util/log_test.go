package util_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github/chapool/go-bridge/internal/util"
)

func TestLogFromContextFallsBackToGlobal(t *testing.T) {
	l := util.LogFromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, l.GetLevel())
}

func TestLogFromContextDisabled(t *testing.T) {
	ctx := util.DisableLogger(context.Background(), true)
	l := util.LogFromContext(ctx)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestWithLogFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := base.WithContext(t.Context())

	ctx = util.WithLogFields(ctx, map[string]string{"op": "deposit"})
	util.LogFromContext(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"op":"deposit"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
