package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		origErr := errors.Cause(err)
		switch {
		case origErr == core.ErrMalformedResponse || origErr == core.ErrUpstream:
			code = http.StatusBadGateway
			message = origErr.Error()
			logger.Warn("generative request failed", err)
		case core.IsNotFound(origErr):
			code = http.StatusNotFound
			message = origErr.Error()
		case core.IsStateError(origErr):
			code = http.StatusConflict
			message = origErr.Error()
		default:
			code, message = classify(err, origErr, ctx, logger, signalShutdown)
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				logger.Error("sending error response", err)
			}
		}
	}
}

func classify(
	err, origErr error,
	ctx echo.Context,
	logger core.Logger,
	signalShutdown func(),
) (int, interface{}) {
	switch e := origErr.(type) {
	case *echo.HTTPError:
		if e == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, e.Message
		}
		if e.Internal != nil {
			if herr, ok := e.Internal.(*echo.HTTPError); ok {
				e = herr
			}
		}
		return e.Code, e.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(e))
		for _, vErr := range e {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if e.Fields != nil {
			fldErrs := make(map[string]string, len(e.Fields))
			for _, fErr := range e.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, e.Error()
	}

	// any other error is a server error
	msg := http.StatusText(http.StatusInternalServerError)
	var usr user.User
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		usr.ID = claims.Subject
		usr.Name = claims.Name
		usr.Email = claims.Email
	}
	logger.Error(msg, errors.Wrap(err, msg), usr)

	// shutting down...
	if core.IsShutdown(err) && signalShutdown != nil {
		signalShutdown()
	}
	return http.StatusInternalServerError, msg
}
