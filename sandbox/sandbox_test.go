package sandbox

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name      string
		requested string
		want      string
		wantErr   bool
	}{
		{name: "simple relative", requested: "a/b", want: filepath.Join(base, "a", "b")},
		{name: "single file", requested: "main.go", want: filepath.Join(base, "main.go")},
		{name: "dot is base", requested: ".", want: base},
		{name: "trailing slash", requested: "src/", want: filepath.Join(base, "src")},
		{name: "dot segments collapse", requested: "./a/./b", want: filepath.Join(base, "a", "b")},
		{name: "empty", requested: "", wantErr: true},
		{name: "whitespace", requested: "   ", wantErr: true},
		{name: "parent escape", requested: "../x", wantErr: true},
		{name: "parent inside", requested: "a/../b", wantErr: true},
		{name: "backslash parent", requested: `a\..\..\x`, wantErr: true},
		{name: "absolute unix", requested: "/etc/passwd", wantErr: true},
		{name: "absolute backslash", requested: `\windows\system32`, wantErr: true},
		{name: "windows volume", requested: `C:\Users`, wantErr: true},
		{name: "dotdot prefixed name allowed", requested: "..hidden/file", want: filepath.Join(base, "..hidden", "file")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(base, tt.requested)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) = %q, want error", tt.requested, got)
				}
				if !errors.Is(err, ErrViolation) {
					t.Errorf("error %v is not ErrViolation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.requested, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.requested, got, tt.want)
			}
			if !strings.HasPrefix(got, base) {
				t.Errorf("result %q not prefixed by base %q", got, base)
			}
		})
	}
}

func TestResolveRejectsRegardlessOfBase(t *testing.T) {
	for _, base := range []string{"/", t.TempDir(), "relative/base"} {
		for _, req := range []string{"../x", "/etc/passwd"} {
			if _, err := Resolve(base, req); err == nil {
				t.Errorf("Resolve(%q, %q) succeeded", base, req)
			}
		}
	}
}

func TestWithinSiblingPrefix(t *testing.T) {
	if within("/srv/base", "/srv/base-other/file") {
		t.Error("sibling directory sharing a name prefix must not be within base")
	}
	if !within("/srv/base", "/srv/base/file") {
		t.Error("child should be within base")
	}
	if !within("/", "/etc") {
		t.Error("everything is within root")
	}
}

func TestRelative(t *testing.T) {
	base := t.TempDir()
	full := filepath.Join(base, "a", "b.txt")
	if got := Relative(base, full); got != "a/b.txt" {
		t.Errorf("Relative() = %q, want a/b.txt", got)
	}
}
