/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/service"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type DeleteResponse struct {
	DeleteSuccessful bool   `json:"delete_successful"`
	Message          string `json:"message"`
}

// statusFor maps a service error to its HTTP status and body. Unknown
// errors become a bare 500.
func statusFor(err error) (int, ErrorResponse) {
	var validationErr *service.ValidationError
	var constraintErr *service.ConstraintError
	switch {
	case errors.Is(err, service.ErrBakeryNotFound):
		return http.StatusNotFound, ErrorResponse{Message: "Bakery not found."}
	case errors.Is(err, service.ErrBakedGoodNotFound):
		return http.StatusNotFound, ErrorResponse{Message: "Baked good not found."}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Message: validationErr.Message, Errors: validationErr.Fields}
	case errors.As(err, &constraintErr):
		switch constraintErr.Kind {
		case database.DuplicateKeyErr:
			return http.StatusConflict, ErrorResponse{Message: "Resource already exists."}
		case database.ForeignKeyViolationErr:
			return http.StatusBadRequest, ErrorResponse{Message: "Referenced resource does not exist."}
		default:
			return http.StatusBadRequest, ErrorResponse{Message: "Invalid input."}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Message: "Internal server error."}
}

func (h *handler) fail(c *gin.Context, err error) {
	code, body := statusFor(err)
	_ = c.Error(err)
	if code >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("req_uri", c.Request.RequestURI).Error("Request failed")
	}
	c.AbortWithStatusJSON(code, body)
}
