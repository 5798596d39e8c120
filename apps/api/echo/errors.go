package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "authentication or a device id is required")
	errTokenInvalid = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")
	errNoAttempt    = echo.NewHTTPError(http.StatusNotFound, "no attempt in progress for this test")
	errStorageDown  = echo.NewHTTPError(http.StatusServiceUnavailable, "attempt storage temporarily unavailable")
	errSubmitFailed = echo.NewHTTPError(http.StatusBadGateway, "submission failed; your attempt is preserved, retry")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(s *server, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(s.opts.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.StorageUnavailableError:
			code = errStorageDown.Code
			message = errStorageDown.Message
			s.opts.Logger.Warn(errStorageDown.Message.(string), origErr)
		case *attempt.SubmitError:
			code = errSubmitFailed.Code
			message = errSubmitFailed.Message
			s.opts.Logger.Warn(errSubmitFailed.Message.(string), origErr)
		default:
			if errors.Cause(err) == attempt.ErrNoAttempt {
				code = errNoAttempt.Code
				message = errNoAttempt.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if owner, ok := ctx.Get(contextOwnerKey).(string); ok {
				args = append(args, owner)
			}
			s.opts.Logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if !ctx.Response().Committed {
			_ = ctx.JSON(code, map[string]interface{}{"error": message})
		}
	}
}
