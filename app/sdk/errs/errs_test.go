package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hexalytics/portal/app/sdk/errs"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code errs.ErrCode
		want int
	}{
		{errs.InvalidArgument, http.StatusBadRequest},
		{errs.Unauthenticated, http.StatusUnauthorized},
		{errs.PermissionDenied, http.StatusForbidden},
		{errs.NotFound, http.StatusNotFound},
		{errs.Aborted, http.StatusConflict},
		{errs.Unavailable, http.StatusServiceUnavailable},
		{errs.Internal, http.StatusInternalServerError},
		{errs.InternalOnlyLog, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := errs.Errorf(tt.code, "boom")
		if got := err.HTTPStatus(); got != tt.want {
			t.Errorf("code %s: got status %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrapping(t *testing.T) {
	cause := errors.New("db is down")
	err := errs.New(errs.Unavailable, cause)

	wrapped := fmt.Errorf("outer: %w", err)

	if !errs.IsError(wrapped) {
		t.Fatal("IsError should find the Error through wrapping")
	}

	got := errs.GetError(wrapped)
	if got.Code != errs.Unavailable {
		t.Errorf("got code %s, want Unavailable", got.Code)
	}

	if got.Message != "db is down" {
		t.Errorf("got message %q", got.Message)
	}
}

func TestCaller(t *testing.T) {
	err := errs.Errorf(errs.Internal, "boom")

	if err.FuncName == "" || err.FileName == "" {
		t.Errorf("caller info missing: func %q file %q", err.FuncName, err.FileName)
	}
}

func TestFieldErrors(t *testing.T) {
	var fe errs.FieldErrors
	fe.Add("email", errors.New("malformed"))

	err := fe.ToError()
	if err.Code != errs.InvalidArgument {
		t.Errorf("got code %s, want InvalidArgument", err.Code)
	}

	if !errs.IsFieldErrors(fe) {
		t.Error("IsFieldErrors should be true")
	}
}
