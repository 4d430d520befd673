package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Required("Bucket", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Required("Bucket", "models")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_NonNegativeDuration(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.NonNegativeDuration("Timeout", -time.Second).NonNegativeDuration("Other", 0)

	if len(cv.Errors()) != 1 {
		t.Errorf("Expected 1 error, got %d", len(cv.Errors()))
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.When(false, func(cv *ConfigValidator) { cv.Required("DSN", "") })
	if cv.HasErrors() {
		t.Error("validations must not run when condition is false")
	}

	cv.When(true, func(cv *ConfigValidator) { cv.Required("DSN", "") })
	if !cv.HasErrors() {
		t.Error("validations must run when condition is true")
	}
}

func TestConfigValidator_CustomWraps(t *testing.T) {
	sentinel := errors.New("boom")
	cv := NewConfigValidator("TestConfig")
	cv.Custom("Field", func() error { return sentinel })

	if err := cv.Validate(); !errors.Is(err, sentinel) {
		t.Errorf("Validate() = %v, want wrapped sentinel", err)
	}
}

func TestConfigValidator_ValidateMultiple(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	if err := cv.Validate(); err != nil {
		t.Errorf("empty validator returned %v", err)
	}

	cv.Required("A", "").Required("B", "")
	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "2 errors") || !strings.Contains(err.Error(), "TestConfig.B") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestFormatValidationError(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"

	err := validateStruct(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "Config.Log.Level") {
		t.Errorf("error should name the field: %v", err)
	}

	if validateStruct(nil) == nil {
		t.Error("Expected error for nil config")
	}
}
