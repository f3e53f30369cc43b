package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HugoDaniel/glslkit/internal/sourcemap"
)

func TestWriteDiff(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDiff(&buf, "a.glsl", "float a;\nfloat b;\n", "float a;\nfloat c;\n", false); err != nil {
		t.Fatalf("writeDiff failed: %v", err)
	}
	for _, want := range []string{"--- a.glsl\n", "+++ a.glsl\n", "@@ -1,2 +1,2 @@\n", " float a;\n", "-float b;\n", "+float c;\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in:\n%s", want, buf.String())
		}
	}
}

func TestWriteDiffUnchanged(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDiff(&buf, "a.glsl", "float a;\n", "float a;\n", true); err != nil {
		t.Fatalf("writeDiff failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no diff, got:\n%s", buf.String())
	}
}

func testMap() *sourcemap.Map {
	b := sourcemap.NewBuilder("float a;")
	b.Add(0, 0, 0, "")
	return b.Build(sourcemap.Options{SourceName: "a.glsl"})
}

func TestAttachSourceMapFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.js.map")
	code, err := attachSourceMap("let a;\n", testMap(), target)
	if err != nil {
		t.Fatalf("attachSourceMap failed: %v", err)
	}
	if code != "let a;\n//# sourceMappingURL=out.js.map\n" {
		t.Errorf("unexpected code %q", code)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("map not written: %v", err)
	}
	if !bytes.Contains(data, []byte(`"mappings":"AAAA"`)) {
		t.Errorf("unexpected map %s", data)
	}
}

func TestAttachSourceMapInline(t *testing.T) {
	code, err := attachSourceMap("let a;\n", testMap(), "inline")
	if err != nil {
		t.Fatalf("attachSourceMap failed: %v", err)
	}
	if !strings.HasPrefix(code, "let a;\n//# sourceMappingURL=data:application/json;base64,") {
		t.Errorf("unexpected code %q", code)
	}
}

func TestAttachSourceMapNeedsJS(t *testing.T) {
	if _, err := attachSourceMap("float a;\n", nil, "inline"); err == nil {
		t.Error("expected an error without a map")
	}
}
