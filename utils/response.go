package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorObject is one entry of the "errors" array returned on failure.
type ErrorObject struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type ErrorsResponse struct {
	Errors []ErrorObject `json:"errors"`
}

type DataResponse struct {
	Data interface{} `json:"data"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

// EmptyResponse answers 200 with no body. Actions that only mutate state use it.
func EmptyResponse(c *gin.Context) {
	c.Status(http.StatusOK)
}

func ErrorResponse(c *gin.Context, statusCode int, code, detail string) {
	c.JSON(statusCode, ErrorsResponse{
		Errors: []ErrorObject{NewErrorObject(statusCode, code, detail)},
	})
}

func NewErrorObject(statusCode int, code, detail string) ErrorObject {
	return ErrorObject{
		Status: strconv.Itoa(statusCode),
		Code:   code,
		Title:  http.StatusText(statusCode),
		Detail: detail,
	}
}

func BadRequestResponse(c *gin.Context, code, detail string) {
	ErrorResponse(c, http.StatusBadRequest, code, detail)
}

func UnauthorizedResponse(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusUnauthorized, "FRAMEWORK__UNAUTHORIZED", detail)
}

func ForbiddenResponse(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusForbidden, "FRAMEWORK__FORBIDDEN", detail)
}

func NotFoundResponse(c *gin.Context, code, detail string) {
	ErrorResponse(c, http.StatusNotFound, code, detail)
}

func InternalServerErrorResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, "FRAMEWORK__INTERNAL_ERROR", "")
}
