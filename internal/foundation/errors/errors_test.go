package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "hotbundle.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "hotbundle.yaml" {
			t.Errorf("expected context file=hotbundle.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("bootstrap: %w", ConfigError("entry missing").Build())

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if GetSeverity(err) != SeverityFatal {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := errors.New("plain")
		if GetCategory(err) != CategoryInternal {
			t.Errorf("expected internal category, got %s", GetCategory(err))
		}
		if GetSeverity(err) != SeverityError {
			t.Errorf("expected error severity, got %s", GetSeverity(err))
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("write: broken pipe")
	err := WrapError(originalErr, CategoryDelivery, "send failed").
		WithContext("client", "c1").
		Build()

	if err.Severity() != SeverityError {
		t.Errorf("expected default severity %s, got %s", SeverityError, err.Severity())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if err.Error() != "[delivery:error] send failed: write: broken pipe" {
		t.Errorf("unexpected message %q", err.Error())
	}

	withMore := err.WithContext("generation", 3)
	if _, ok := err.Context().Get("generation"); ok {
		t.Error("WithContext must not mutate the original error")
	}
	if v, _ := withMore.Context().Get("generation"); v != 3 {
		t.Errorf("expected generation context, got %v", v)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cases := []struct {
		err      *ClassifiedError
		category ErrorCategory
		severity ErrorSeverity
	}{
		{TransformError("x").Build(), CategoryTransform, SeverityError},
		{BuildError("x").Build(), CategoryBuild, SeverityError},
		{ConfigError("x").Build(), CategoryConfig, SeverityFatal},
		{WatchError("x").Build(), CategoryWatch, SeverityWarning},
		{DeliveryError("x").Build(), CategoryDelivery, SeverityWarning},
	}
	for _, c := range cases {
		if c.err.Category() != c.category || c.err.Severity() != c.severity {
			t.Errorf("got %s/%s, want %s/%s", c.err.Category(), c.err.Severity(), c.category, c.severity)
		}
	}
	if !errors.Is(BuildError("x").Build(), BuildError("x").Build()) {
		t.Error("errors with the same category and message should match")
	}
}
