package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

var errInvalidBody = errors.New("Corps de requête invalide")

// bindJSON decodes the request body into obj. Validation is left to the
// services, which report French field messages.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return errInvalidBody
	}
	return nil
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted, such
// as a rejection without a reason. An empty body leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, obj); err != nil {
		return errInvalidBody
	}
	return nil
}
