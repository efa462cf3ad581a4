// Package manifest maintains the version file and the derived install
// manifests that embed the release image tag.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// VersionFile is the file at the repository root holding the bare version.
const VersionFile = "VERSION"

// WriteVersion writes the version file in the repository root.
func WriteVersion(repoPath, version string) error {
	path := filepath.Join(filepath.Clean(repoPath), VersionFile)
	if err := os.WriteFile(path, []byte(version+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}
	return nil
}

// ReadVersion reads the version file, trimmed.
func ReadVersion(repoPath string) (string, error) {
	path := filepath.Join(filepath.Clean(repoPath), VersionFile)
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Regenerate rewrites every image reference for imageRepo in the given
// manifest files to point at newTag. Files may contain multiple YAML
// documents; structure is preserved via a decode/re-encode round trip.
func Regenerate(repoPath, imageRepo, newTag string, manifestPaths []string) error {
	for _, rel := range manifestPaths {
		path := filepath.Join(filepath.Clean(repoPath), filepath.Clean(rel))
		if err := regenerateFile(path, imageRepo, newTag); err != nil {
			return fmt.Errorf("failed to regenerate %s: %w", rel, err)
		}
	}
	return nil
}

func regenerateFile(path, imageRepo, newTag string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return err
	}

	var out bytes.Buffer
	dec := yaml.NewDecoder(bytes.NewReader(data))
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)

	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}

		retagImages(doc, imageRepo, newTag)

		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}

	return os.WriteFile(path, out.Bytes(), 0600)
}

// retagImages walks the decoded document and rewrites any "image" string
// whose repository part equals imageRepo.
func retagImages(node any, imageRepo, newTag string) {
	switch v := node.(type) {
	case map[string]any:
		for key, val := range v {
			if key == "image" {
				if s, ok := val.(string); ok && imageRepoOf(s) == imageRepo {
					v[key] = imageRepo + ":" + newTag
					continue
				}
			}
			retagImages(val, imageRepo, newTag)
		}
	case []any:
		for _, item := range v {
			retagImages(item, imageRepo, newTag)
		}
	}
}

// imageRepoOf strips the tag or digest from an image reference. The colon in
// a registry port is not a tag separator.
func imageRepoOf(ref string) string {
	if idx := strings.Index(ref, "@"); idx >= 0 {
		return ref[:idx]
	}
	slash := strings.LastIndex(ref, "/")
	colon := strings.LastIndex(ref, ":")
	if colon > slash {
		return ref[:colon]
	}
	return ref
}
