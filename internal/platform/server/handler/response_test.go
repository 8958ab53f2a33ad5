package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"MiniBase/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(domain.NotFoundError("table %q", "people")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.SchemaError("duplicate field %q", "age")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.ValidationError("bad value")))
	assert.Equal(t, http.StatusConflict, StatusFor(domain.TransactionStateError("not active")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(domain.IOError("read", os.ErrClosed)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, domain.ValidationError("bad value"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation error: bad value"}`, rec.Body.String())
}
