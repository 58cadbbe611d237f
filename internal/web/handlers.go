// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/session"
	"github.com/postline/postline/pkg/errutil"
)

// maxBodyBytes caps operation request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "hi")
}

func (s *Server) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": s.dispatcher.Registry().Schema()})
}

// handleOperation dispatches POST /api/:operation. Session changes are saved
// before any part of the response is written so Set-Cookie goes out with it.
func (s *Server) handleOperation(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("operation")

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, api.ErrorBody{
				Code:    api.CodeInvalidArgs,
				Message: "request body too large",
			})
			return
		}
		writeError(c, http.StatusBadRequest, api.ErrorBody{
			Code:    api.CodeInvalidArgs,
			Message: "unreadable request body",
		})
		return
	}

	sess := session.FromGin(c)
	result, err := s.dispatcher.Dispatch(ctx, &api.RequestContext{Session: sess}, name, raw)

	if saveErr := sess.Save(); saveErr != nil {
		errutil.LogErrorContext(ctx, s.logger, "session save failed",
			oops.With("operation", name).Wrap(saveErr))
		writeError(c, http.StatusInternalServerError, api.InternalError())
		return
	}

	if err != nil {
		body := api.PublicError(err)
		writeError(c, statusFor(body.Code), body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// sessionFailed answers requests whose session could not be loaded.
func (s *Server) sessionFailed(c *gin.Context, err error) {
	errutil.LogErrorContext(c.Request.Context(), s.logger, "session load failed", err)
	writeError(c, http.StatusInternalServerError, api.InternalError())
}

func writeError(c *gin.Context, status int, body api.ErrorBody) {
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func statusFor(code string) int {
	switch code {
	case api.CodeUnknownOperation:
		return http.StatusNotFound
	case api.CodeInvalidArgs:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
