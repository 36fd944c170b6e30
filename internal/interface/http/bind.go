package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/validation"
)

const msgPayloadRequired = "Payload is required"

// bindJSON decodes and validates the request body into out. An absent body,
// or one that is an empty object, is rejected before field validation.
func bindJSON(c *gin.Context, out any) error {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.Validation("Payload too large", nil)
		}
		return apperror.Validation("Invalid request body", nil)
	}
	if isEmptyPayload(body) {
		return apperror.Validation(msgPayloadRequired, nil)
	}
	if err := binding.JSON.BindBody(body, out); err != nil {
		return apperror.Validation("Validation failed", validation.ToDetails(err))
	}
	return nil
}

func isEmptyPayload(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return true
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(body, &obj) == nil && len(obj) == 0
}
