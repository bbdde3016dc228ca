package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	prev := Version
	Version = "v1.2.3"
	defer func() { Version = prev }()

	if got := Get().Version; got != "v1.2.3" {
		t.Errorf("Version = %q, want %q", got, "v1.2.3")
	}
}

func TestInfo_String(t *testing.T) {
	s := Info{Version: "v1", Commit: "abc", BuildTime: "now", GoVersion: "go1.24"}.String()
	for _, part := range []string{"v1", "abc", "now", "go1.24"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}
