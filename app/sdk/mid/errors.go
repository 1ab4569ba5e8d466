package mid

import (
	"context"
	"net/http"

	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/sdk/web"
	"github.com/hexalytics/portal/foundation/logger"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			err := checkIsError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error

			switch {
			case errs.IsFieldErrors(err):
				fieldErrors := errs.GetFieldErrors(err)
				appErr = fieldErrors.ToError()

			case errs.IsError(err):
				appErr = errs.GetError(err)

			default:
				appErr = errs.Errorf(errs.Internal, "Internal Server Error")
			}

			log.Error(ctx, "handled error during request",
				"err", err,
				"source_err_file", appErr.FileName,
				"source_err_func", appErr.FuncName)

			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Errorf(errs.Internal, "Internal Server Error")
			}

			return appErr
		}

		return h
	}

	return m
}
