package httperr

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "429 Too Many Requests", New(429, "").Error())
	assert.Equal(t, "503 Service Unavailable", New(503, "").Error())
	assert.Equal(t, "418 short and stout", New(418, "short and stout").Error())
}

func TestFrom_Response(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	resp := rec.Result()
	resp.Status = "502 Bad Gateway"

	err := From(resp)
	require.NotNil(t, err)
	assert.Equal(t, 502, err.Status)
	assert.Equal(t, "502 Bad Gateway", err.Error())
}

func TestStatusOf_Wrapped(t *testing.T) {
	err := eris.Wrap(New(404, ""), "exa: search")
	assert.Equal(t, 404, StatusOf(err))

	assert.Equal(t, 0, StatusOf(fmt.Errorf("plain")))
	assert.Equal(t, 0, StatusOf(nil))
}
