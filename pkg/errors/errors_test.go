// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/pi/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "template_not_found_error",
			code:    errors.ErrTemplateNotFound,
			message: "template missing",
			wantStr: "[TEMPLATE_NOT_FOUND] template missing",
		},
		{
			name:    "already_exists_error",
			code:    errors.ErrAlreadyExists,
			message: "destination not empty",
			wantStr: "[ALREADY_EXISTS] destination not empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(cause, errors.ErrBuildIO, "failed to write file")

	if !stderrors.Is(err, cause) {
		t.Error("Wrap() should preserve the wrapped error for errors.Is")
	}
	if got := err.Error(); got != "[BUILD_IO] failed to write file: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if err := errors.Wrap(nil, errors.ErrBuildIO, "nope"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrRenderSyntax, "bad template at %s", "x.txt")

	if !errors.IsErrorCode(err, errors.ErrRenderSyntax) {
		t.Error("IsErrorCode() should match the error's code")
	}
	if errors.IsErrorCode(err, errors.ErrConfigParse) {
		t.Error("IsErrorCode() should not match a different code")
	}

	wrapped := errors.Wrap(err, errors.ErrBuildIO, "outer")
	if errors.GetErrorCode(wrapped) != errors.ErrBuildIO {
		t.Error("GetErrorCode() should report the outermost code")
	}
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrPathEscape, "path escapes root").
		WithDetail("path", "../evil")

	details := errors.GetErrorDetails(err)
	if details["path"] != "../evil" {
		t.Errorf("GetErrorDetails() path = %v, want ../evil", details["path"])
	}
}

func TestGetErrorCodeNonPiError(t *testing.T) {
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrUnknown)
	}
}
