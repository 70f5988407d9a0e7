package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jhyland87/chem-crawler/internal/application/search"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// searchHandler streams products as NDJSON: one JSON object per line, a
// line per product as it arrives, then a trailing summary line.  A client
// disconnect cancels the whole search.
func searchHandler(deps ServerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		limit := deps.DefaultLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(c, errors.InvalidParam("limit must be a non-negative integer"))
				return
			}
			limit = parsed
		}
		var enabled []string
		if raw := c.Query("suppliers"); raw != "" {
			enabled = strings.Split(raw, ",")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), deps.SearchTimeout)
		defer cancel()

		stream, err := deps.Search.Search(ctx, search.Request{
			Query:     query,
			Suppliers: enabled,
			Limit:     limit,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.Header("Content-Type", "application/x-ndjson")
		c.Header("X-Search-ID", stream.ID())
		c.Status(http.StatusOK)

		enc := json.NewEncoder(c.Writer)
		flusher, _ := c.Writer.(http.Flusher)

		count := 0
		for result := range stream.Results() {
			if err := enc.Encode(result); err != nil {
				// Client went away; stop the fan-out.
				stream.Cancel()
				break
			}
			count++
			if flusher != nil {
				flusher.Flush()
			}
		}

		_ = enc.Encode(gin.H{"done": true, "count": count, "search_id": stream.ID()})
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func sessionHandler(deps ServerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := deps.Sessions.Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			if err == cache.ErrCacheMiss || errors.IsCode(err, errors.CodeNotFound) {
				writeError(c, errors.NotFound("session not found"))
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	resp := errorResponse{
		Code:    string(code),
		Message: errors.DefaultMessageForCode(code),
	}
	if appErr, ok := err.(*errors.AppError); ok {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), resp)
}
