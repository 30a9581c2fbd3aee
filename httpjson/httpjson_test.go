package httpjson

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, JSON{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "16", rec.Header().Get("Content-Length"))
	assert.Equal(t, "{\"status\":\"ok\"}\n", rec.Body.String())
}

func TestWriteJSONWithStatusEscapesHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONWithStatus(rec, http.StatusAccepted, JSON{"x": "<b>"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"x":"<b>"}`, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `\u003cb\u003e`)
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, JSON{"ch": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
