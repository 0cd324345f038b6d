package http

import (
	"net/http"

	"debt-ledger/internal/adapter/middleware"
	"debt-ledger/pkg/id"

	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the JSON body into req and runs the validator.
// On failure the 400 response is already written and ok is false.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// pathID reads a 32-hex path parameter.
func pathID(c echo.Context, name string) (string, bool) {
	v := c.Param(name)
	return v, id.Valid(v)
}

func badPathParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
}

// sameUser reports whether the authenticated caller owns the user-scoped
// path.
func sameUser(c echo.Context, userID string) bool {
	return middleware.UserID(c) == userID
}
