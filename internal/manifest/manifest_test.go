package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndReadVersion(t *testing.T) {
	dir := t.TempDir()

	if err := WriteVersion(dir, "2.4.0"); err != nil {
		t.Fatalf("WriteVersion returned error: %v", err)
	}

	got, err := ReadVersion(dir)
	if err != nil {
		t.Fatalf("ReadVersion returned error: %v", err)
	}
	if got != "2.4.0" {
		t.Errorf("ReadVersion = %q, want 2.4.0", got)
	}
}

func TestRegenerateRetagsMatchingImages(t *testing.T) {
	dir := t.TempDir()
	manifest := strings.Join([]string{
		"apiVersion: apps/v1",
		"kind: Deployment",
		"spec:",
		"  template:",
		"    spec:",
		"      containers:",
		"        - name: controller",
		"          image: quay.io/example/controller:v2.3.0",
		"        - name: sidecar",
		"          image: docker.io/library/busybox:1.36",
		"---",
		"apiVersion: v1",
		"kind: ConfigMap",
		"data:",
		"  image: quay.io/example/controller:v2.3.0",
		"",
	}, "\n")

	path := filepath.Join(dir, "install.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0600); err != nil {
		t.Fatal(err)
	}

	err := Regenerate(dir, "quay.io/example/controller", "v2.4.0", []string{"install.yaml"})
	if err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	if strings.Contains(out, "v2.3.0") {
		t.Errorf("old tag survived regeneration:\n%s", out)
	}
	if strings.Count(out, "quay.io/example/controller:v2.4.0") != 2 {
		t.Errorf("expected both matching images retagged:\n%s", out)
	}
	if !strings.Contains(out, "busybox:1.36") {
		t.Errorf("unrelated image must not be touched:\n%s", out)
	}
}

func TestImageRepoOf(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"quay.io/example/controller:v2.3.0", "quay.io/example/controller"},
		{"quay.io/example/controller", "quay.io/example/controller"},
		{"registry:5000/app:v1", "registry:5000/app"},
		{"registry:5000/app", "registry:5000/app"},
		{"quay.io/example/controller@sha256:abcd", "quay.io/example/controller"},
	}

	for _, tt := range tests {
		if got := imageRepoOf(tt.ref); got != tt.want {
			t.Errorf("imageRepoOf(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
