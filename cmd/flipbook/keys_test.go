package main

import (
	"slices"
	"testing"

	flipbook "github.com/porticus-lab/go-flipbook"
	"github.com/porticus-lab/go-flipbook/config"
)

func TestKeyCommand(t *testing.T) {
	tests := []struct {
		key  string
		dir  flipbook.Direction
		want string
	}{
		{"ArrowRight", flipbook.LTR, "next"},
		{"ArrowLeft", flipbook.LTR, "prev"},
		{"ArrowRight", flipbook.RTL, "prev"},
		{"ArrowLeft", flipbook.RTL, "next"},
		{" ", flipbook.RTL, "next"},
		{"PageUp", flipbook.RTL, "prev"},
		{"Home", flipbook.LTR, "first"},
		{"End", flipbook.RTL, "last"},
		{"+", flipbook.LTR, "zoom-in"},
		{"0", flipbook.LTR, "zoom-reset"},
		{"q", flipbook.LTR, quit},
		{"x", flipbook.LTR, ""},
	}
	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.dir.String(), func(t *testing.T) {
			if got := keyCommand(tt.key, tt.dir); got != tt.want {
				t.Errorf("keyCommand(%q, %s) = %q, want %q", tt.key, tt.dir, got, tt.want)
			}
		})
	}
}

func TestKeyCommandsExist(t *testing.T) {
	keys := []string{"ArrowRight", "ArrowLeft", "Home", "End", "+", "-", "0", "d", "m", "[", "]", "s", "S"}
	for _, k := range keys {
		name := keyCommand(k, flipbook.LTR)
		if _, ok := commands[name]; !ok {
			t.Errorf("key %q maps to unknown command %q", k, name)
		}
	}
}

func TestTerminalKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "nq", []string{"n", "q"}},
		{"arrows", "\x1b[C\x1b[D", []string{"ArrowRight", "ArrowLeft"}},
		{"application mode", "\x1bOC", []string{"ArrowRight"}},
		{"paging", "\x1b[5~\x1b[6~", []string{"PageUp", "PageDown"}},
		{"ctrl-c", "\x03", []string{"q"}},
		{"unknown sequence", "\x1b[15~n", []string{"n"}},
		{"lone escape", "\x1b", nil},
		{"enter", "\r", []string{"PageDown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := terminalKeys([]byte(tt.in))
			if !slices.Equal(got, tt.want) {
				t.Errorf("terminalKeys(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewerOptions(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Viewer.Direction = "rtl"
	cfg.Viewer.Mode = "single"

	opts, err := viewerOptions(cfg, envFromContext(contextWithEnv(t.Context())).Log)
	if err != nil {
		t.Fatalf("viewerOptions() error = %v", err)
	}
	v := flipbook.NewViewer(nil, nil, flipbook.NewLoop(), opts...)
	if v.Direction() != flipbook.RTL || v.Mode() != flipbook.Single {
		t.Errorf("viewer = %s/%s, want rtl/single", v.Direction(), v.Mode())
	}

	cfg.Viewer.Direction = "sideways"
	if _, err := viewerOptions(cfg, envFromContext(contextWithEnv(t.Context())).Log); err == nil {
		t.Error("expected error for bad direction")
	}
}
