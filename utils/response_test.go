package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorObject(t *testing.T) {
	obj := NewErrorObject(http.StatusNotFound, "MEDIA_FOLDER_NOT_FOUND_EXCEPTION", "missing")

	assert.Equal(t, "404", obj.Status)
	assert.Equal(t, "Not Found", obj.Title)
	assert.Equal(t, "MEDIA_FOLDER_NOT_FOUND_EXCEPTION", obj.Code)
	assert.Equal(t, "missing", obj.Detail)
}

func TestNotFoundResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	NotFoundResponse(c, "SOME_CODE", "nothing here")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "404", resp.Errors[0].Status)
	assert.Equal(t, "SOME_CODE", resp.Errors[0].Code)
}
