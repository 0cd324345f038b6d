package middleware

import (
	"net/http"
	"strings"
	"time"

	"debt-ledger/pkg/id"

	"github.com/labstack/echo/v4"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderUserID    = "Ax-User-Id"

	// Allowed client/server clock skew for Ax-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute

	ctxRequestID = "ax.request_id"
	ctxUserID    = "ax.user_id"
)

type errorBody struct {
	Error string `json:"error"`
}

// RequestHeaders checks the caller headers on mutating routes and exposes
// them through RequestID and UserID. Ax-User-Id is authenticated upstream;
// here it is only checked for shape. Ax-Request-Id becomes the idempotency
// key of the settlement call.
func RequestHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// Only enforce on mutating methods
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderRequestID)))
			if reqID == "" {
				return c.JSON(http.StatusBadRequest, errorBody{Error: "missing Ax-Request-Id"})
			}
			if !validReqID(reqID) {
				return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid Ax-Request-Id format"})
			}

			reqAt, err := parseAxRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
			}
			now := nowUTC()
			if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return c.JSON(http.StatusBadRequest, errorBody{Error: "Ax-Request-At too skewed"})
			}

			userID := strings.TrimSpace(req.Header.Get(HeaderUserID))
			if userID == "" {
				return c.JSON(http.StatusBadRequest, errorBody{Error: "missing Ax-User-Id"})
			}
			if !id.Valid(userID) {
				return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid Ax-User-Id"})
			}

			c.Set(ctxRequestID, reqID)
			c.Set(ctxUserID, userID)
			c.Response().Header().Set(HeaderRequestID, reqID)
			return next(c)
		}
	}
}

// RequestID is the validated Ax-Request-Id, or "" on read-only routes.
func RequestID(c echo.Context) string {
	v, _ := c.Get(ctxRequestID).(string)
	return v
}

// UserID is the validated Ax-User-Id, or "" on read-only routes.
func UserID(c echo.Context) string {
	v, _ := c.Get(ctxUserID).(string)
	return v
}
