package util

import (
	"reflect"
	"testing"
)

func TestRenderString(t *testing.T) {
	out, err := RenderString("deploy {{ .app }} version {{ .version }}", Data{
		"app":     "web",
		"version": "2.4.1",
	})
	if err != nil {
		t.Fatalf("RenderString failed: %v", err)
	}
	if out != "deploy web version 2.4.1" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderStringNoPlaceholders(t *testing.T) {
	out, err := RenderString("make install", nil)
	if err != nil {
		t.Fatalf("RenderString failed: %v", err)
	}
	if out != "make install" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderStringMissingKey(t *testing.T) {
	if _, err := RenderString("{{ .absent }}", Data{}); err == nil {
		t.Error("expected an error for a missing key")
	}
}

func TestRenderStringBadTemplate(t *testing.T) {
	if _, err := RenderString("{{ .unclosed", nil); err == nil {
		t.Error("expected a parse error")
	}
}

func TestParamData(t *testing.T) {
	d := ParamData(map[string]string{"a": "1", "b": "2"})
	if len(d) != 2 || d["a"] != "1" || d["b"] != "2" {
		t.Errorf("ParamData = %v", d)
	}
}

func TestIsBlank(t *testing.T) {
	cases := map[string]bool{
		"":      true,
		"   ":   true,
		"\t\n":  true,
		"x":     false,
		"  x  ": false,
	}
	for in, want := range cases {
		if got := IsBlank(in); got != want {
			t.Errorf("IsBlank(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup = %v; want %v", got, want)
	}
}
