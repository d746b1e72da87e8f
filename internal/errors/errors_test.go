package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBenchError_Error(t *testing.T) {
	err := New(ErrCategoryRead, CodeReadFailed, "read failed")
	expected := "[READ:READ_FAILED] read failed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := Wrap(ErrCategoryRead, CodeReadFailed, "read failed", cause)
	expected := "[READ:READ_FAILED] read failed: unexpected EOF"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryStorage, CodeDownloadFailed, "download failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestBenchError_Is(t *testing.T) {
	err1 := New(ErrCategoryConfig, CodeUnknownContender, "first")
	err2 := New(ErrCategoryConfig, CodeUnknownContender, "second")
	err3 := New(ErrCategoryConfig, CodeInvalidConfig, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategoryData, CodeMissingData, "no files")
	if GetCategory(err) != ErrCategoryData {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryData)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-BenchError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryData, CodeMissingData, "no files")
	if GetCode(err) != CodeMissingData {
		t.Errorf("got %q, want %q", GetCode(err), CodeMissingData)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-BenchError should return empty code")
	}
}

func TestCategoryPredicates(t *testing.T) {
	cfg := NewConfigError(CodeUnknownContender, "unknown contender \"x\"")
	if !IsConfig(cfg) {
		t.Error("IsConfig should match config errors")
	}
	if IsMissingData(cfg) {
		t.Error("IsMissingData should not match config errors")
	}

	missing := NewMissingDataError("no data files found")
	if !IsMissingData(missing) {
		t.Error("IsMissingData should match missing-data errors")
	}

	wrapped := fmt.Errorf("session: %w", missing)
	if !IsMissingData(wrapped) {
		t.Error("IsMissingData should see through fmt.Errorf wrapping")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	c := NewConfigError(CodeInvalidConfig, "runs must be >= 1")
	if c.Category != ErrCategoryConfig || c.Code != CodeInvalidConfig {
		t.Error("NewConfigError mismatch")
	}

	m := NewMissingDataError("no data files found")
	if m.Category != ErrCategoryData || m.Code != CodeMissingData {
		t.Error("NewMissingDataError mismatch")
	}

	r := NewReadError("open file", cause)
	if r.Category != ErrCategoryRead || !errors.Is(r, cause) {
		t.Error("NewReadError mismatch")
	}

	s := NewStorageError(CodeDownloadFailed, "s3 down", cause)
	if s.Category != ErrCategoryStorage || !errors.Is(s, cause) {
		t.Error("NewStorageError mismatch")
	}

	v := NewVerifyError("passenger_count differs")
	if v.Category != ErrCategoryVerify || v.Code != CodeResultMismatch {
		t.Error("NewVerifyError mismatch")
	}

	i := NewInternalError("unexpected", cause)
	if i.Category != ErrCategoryInternal || i.Code != CodeUnexpected {
		t.Error("NewInternalError mismatch")
	}
}
