package errs_test

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github/chapool/go-bridge/internal/errs"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := errors.Wrap(errs.Validation("amount %q is not a number", "abc"), "deposit")

	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.False(t, errors.Is(err, errs.ErrAPI))
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestKindOfUnknown(t *testing.T) {
	assert.Equal(t, errs.KindUnknown, errs.KindOf(errors.New("plain")))
	assert.Equal(t, errs.KindUnknown, errs.KindOf(nil))
}

func TestAPIError(t *testing.T) {
	err := errs.API(http.StatusBadRequest, -1121, "Invalid symbol.")
	assert.Equal(t, "[API] code -1121: Invalid symbol.", err.Error())
	assert.Equal(t, -1121, err.ProviderCode())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode())

	fallback := errs.API(http.StatusBadGateway, 0, "")
	assert.Equal(t, "[API] http status 502", fallback.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errs.Wrap(errs.KindNetworkTransport, cause, "GET %s", "/api/v1/account")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, errs.ErrNetworkTransport)
	assert.Contains(t, err.Error(), "connection refused")
}
