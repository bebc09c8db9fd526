package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/erp/channelsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationDetails(t *testing.T) {
	type batchItem struct {
		OrderID string `json:"order_id" binding:"required,uuid"`
		Status  string `json:"status" binding:"required,max=5"`
	}
	type batchRequest struct {
		Requests []batchItem `json:"requests" binding:"required,min=1,dive"`
		Dir      string      `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	}

	require.NoError(t, SetupValidator())

	var details []dto.ValidationDetail
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req batchRequest
		err := c.ShouldBindJSON(&req)
		require.Error(t, err)
		details = ValidationDetails(err)
		c.Status(http.StatusBadRequest)
	})

	body := `{"requests":[{"order_id":"nope","status":"much-too-long"}]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body)))

	require.Len(t, details, 2)
	assert.Equal(t, dto.ValidationDetail{Field: "order_id", Message: "Invalid UUID format"}, details[0])
	assert.Equal(t, dto.ValidationDetail{Field: "status", Message: "Must be at most 5 characters"}, details[1])
}

func TestValidationDetails_EmptySlice(t *testing.T) {
	type batchRequest struct {
		Requests []string `json:"requests" binding:"required,min=1"`
	}
	require.NoError(t, SetupValidator())

	var details []dto.ValidationDetail
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req batchRequest
		details = ValidationDetails(c.ShouldBindJSON(&req))
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"requests":[]}`)))

	require.Len(t, details, 1)
	assert.Equal(t, "requests", details[0].Field)
	assert.Equal(t, "Must be at least 1 items", details[0].Message)
}

func TestValidationDetails_NotBlank(t *testing.T) {
	type syncRequest struct {
		Status string `json:"status" binding:"required,notblank"`
	}
	require.NoError(t, SetupValidator())

	var details []dto.ValidationDetail
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req syncRequest
		details = ValidationDetails(c.ShouldBindJSON(&req))
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"status":"   "}`)))

	require.Len(t, details, 1)
	assert.Equal(t, dto.ValidationDetail{Field: "status", Message: "Must not be blank"}, details[0])
}

func TestFieldName(t *testing.T) {
	type sample struct {
		JSON   string `json:"order_id,omitempty"`
		Form   string `form:"page_size"`
		YAML   string `yaml:"external_status"`
		Hidden string `json:"-"`
		Plain  string
	}
	typ := reflect.TypeOf(sample{})
	want := []string{"order_id", "page_size", "external_status", "", "Plain"}
	for i, name := range want {
		assert.Equal(t, name, fieldName(typ.Field(i)))
	}
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
