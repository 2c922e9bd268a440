// SPDX-License-Identifier: MIT

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidator_Empty(t *testing.T) {
	v := New()
	if !v.IsValid() {
		t.Error("new validator should be valid")
	}
	if err := v.Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestValidator_AccumulatesErrors(t *testing.T) {
	v := New()
	v.AddError("a", "first", nil)
	v.AddError("b", "second", 42)

	if v.IsValid() {
		t.Error("validator with errors should be invalid")
	}
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}

	err := v.Err()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 2 {
		t.Errorf("expected 2 wrapped errors, got %d", len(verr.Errors()))
	}
}

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		schemes []string
		valid   bool
	}{
		{"https ok", "https://kipoi.org/docs/", []string{"http", "https"}, true},
		{"http ok", "http://localhost:8000", []string{"http", "https"}, true},
		{"empty", "", []string{"http"}, false},
		{"no host", "https://", []string{"https"}, false},
		{"bad scheme", "ftp://host/x", []string{"http", "https"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("field", tt.value, tt.schemes)
			if v.IsValid() != tt.valid {
				t.Errorf("URL(%q) valid = %v, want %v", tt.value, v.IsValid(), tt.valid)
			}
		})
	}
}

func TestValidator_Path(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"empty optional", "", true},
		{"relative", "extractors.md", true},
		{"nested", "transforms/functional.md", true},
		{"absolute", "/etc/passwd", false},
		{"traversal", "../secret.md", false},
		{"inner traversal", "a/../../b.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Path("field", tt.value)
			if v.IsValid() != tt.valid {
				t.Errorf("Path(%q) valid = %v, want %v", tt.value, v.IsValid(), tt.valid)
			}
		})
	}
}

func TestValidator_OneOf(t *testing.T) {
	v := New()
	v.OneOf("level", "info", []string{"debug", "info", "warn"})
	if !v.IsValid() {
		t.Errorf("expected valid, got %v", v.Err())
	}

	v = New()
	v.OneOf("level", "verbose", []string{"debug", "info", "warn"})
	if v.IsValid() {
		t.Error("expected invalid for unknown value")
	}
}

func TestValidator_Port(t *testing.T) {
	for port, valid := range map[int]bool{80: true, 65535: true, 0: false, -1: false, 70000: false} {
		v := New()
		v.Port("port", port)
		if v.IsValid() != valid {
			t.Errorf("Port(%d) valid = %v, want %v", port, v.IsValid(), valid)
		}
	}
}

func TestValidator_Directory(t *testing.T) {
	dir := t.TempDir()

	v := New()
	v.Directory("dir", dir, true)
	if !v.IsValid() {
		t.Errorf("existing directory should validate, got %v", v.Err())
	}

	v = New()
	v.Directory("dir", filepath.Join(dir, "missing"), true)
	if v.IsValid() {
		t.Error("missing directory with mustExist should fail")
	}

	// mustExist=false creates the directory
	created := filepath.Join(dir, "created")
	v = New()
	v.Directory("dir", created, false)
	if !v.IsValid() {
		t.Errorf("directory creation should succeed, got %v", v.Err())
	}
	if info, err := os.Stat(created); err != nil || !info.IsDir() {
		t.Error("directory was not created")
	}
}

func TestValidator_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.md")
	if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	v := New()
	v.File("file", file)
	if !v.IsValid() {
		t.Errorf("existing file should validate, got %v", v.Err())
	}

	v = New()
	v.File("file", dir)
	if v.IsValid() {
		t.Error("directory should not validate as file")
	}

	v = New()
	v.File("file", filepath.Join(dir, "missing.md"))
	if v.IsValid() {
		t.Error("missing file should not validate")
	}
}

func TestValidationError_Message(t *testing.T) {
	v := New()
	v.AddError("a", "broken", nil)
	if got := v.Err().Error(); got != "validation failed for a: broken" {
		t.Errorf("single error message = %q", got)
	}

	v.AddError("b", "also broken", nil)
	msg := v.Err().Error()
	if msg != "validation failed for a: broken; validation failed for b: also broken" {
		t.Errorf("joined error message = %q", msg)
	}
}
