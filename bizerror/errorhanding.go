package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"tenantry/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	status, body := Render(genericErr)
	entry := common.Log.WithFields(logrus.Fields{"method": c.Request.Method, "path": c.Request.URL.Path, "status": status})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Info("request rejected")
	}

	c.JSON(status, body)
	c.Abort()
}

// Render maps an error to its response status and body.
func Render(err error) (int, *common.ErrorBody) {
	var bizErr BizError
	if errors.As(err, &bizErr) {
		respond := bizErr.Respond()
		return respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data}
	}

	// bad request:  io.EOF (no body).
	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"}
	}
	// bad request: json syntax Error
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()}
	}
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()}
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, &common.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"}
	case errors.Is(err, ErrInvalidPassword):
		return http.StatusUnauthorized, &common.ErrorBody{Code: "security.invalid_password", Message: "invalid username or password"}
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNoPolicyForRoute):
		return http.StatusForbidden, &common.ErrorBody{Code: "security.forbidden", Message: "access forbidden"}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, &common.ErrorBody{Code: "common.too_many_requests", Message: "too many requests"}
	case errors.Is(err, ErrUsernameExisted):
		return http.StatusConflict, &common.ErrorBody{Code: "account.username_existed", Message: "username existed"}
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"}
	}

	return http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()}
}
