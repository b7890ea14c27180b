package deploy

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/glyph-dev/glyph/internal/config"
)

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*params.Key] = data
	if params.ContentType != nil {
		f.contentTypes[*params.Key] = *params.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contents []types.Object
	for key := range f.objects {
		if params.Prefix == nil || strings.HasPrefix(key, *params.Prefix) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	sort.Slice(contents, func(i, j int) bool { return *contents[i].Key < *contents[j].Key })
	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// dist lays out a project with a pre-built output directory.
func dist(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, "dist", filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Deploy.Bucket = "glyph-test"
	cfg.Deploy.Prefix = "site"
	return cfg
}

func TestDeployUploadsDist(t *testing.T) {
	cfg := dist(t, map[string]string{
		"counter.json":  `{"name":"counter"}`,
		"bundle.css":    ".card[data-g-0] { color: red; }",
		"manifest.json": `{}`,
	})
	client := newFakeS3()

	result, err := New(client, cfg, Options{}).Deploy(context.Background())
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}

	want := []string{"site/bundle.css", "site/counter.json", "site/manifest.json"}
	if got := client.keys(); !equalStrings(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	if !equalStrings(result.Uploaded, want) {
		t.Errorf("uploaded = %v, want %v", result.Uploaded, want)
	}
	if ct := client.contentTypes["site/counter.json"]; ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if ct := client.contentTypes["site/bundle.css"]; !strings.HasPrefix(ct, "text/css") {
		t.Errorf("content type = %q", ct)
	}
}

func TestDeployPrunesStaleObjects(t *testing.T) {
	cfg := dist(t, map[string]string{"counter.json": `{}`})
	client := newFakeS3()
	client.objects["site/removed.json"] = []byte(`{}`)
	client.objects["other/kept.json"] = []byte(`{}`)

	result, err := New(client, cfg, Options{Prune: true}).Deploy(context.Background())
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}

	if !equalStrings(result.Deleted, []string{"site/removed.json"}) {
		t.Errorf("deleted = %v", result.Deleted)
	}
	want := []string{"other/kept.json", "site/counter.json"}
	if got := client.keys(); !equalStrings(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestDeployDryRun(t *testing.T) {
	cfg := dist(t, map[string]string{"counter.json": `{}`})
	client := newFakeS3()
	client.objects["site/stale.json"] = []byte(`{}`)

	result, err := New(client, cfg, Options{DryRun: true, Prune: true}).Deploy(context.Background())
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}

	if !equalStrings(result.Uploaded, []string{"site/counter.json"}) {
		t.Errorf("uploaded = %v", result.Uploaded)
	}
	if !equalStrings(result.Deleted, []string{"site/stale.json"}) {
		t.Errorf("deleted = %v", result.Deleted)
	}
	// Nothing actually changed.
	if got := client.keys(); !equalStrings(got, []string{"site/stale.json"}) {
		t.Errorf("keys = %v", got)
	}
}

func TestDeployMissingBucket(t *testing.T) {
	cfg := dist(t, map[string]string{"counter.json": `{}`})
	cfg.Deploy.Bucket = ""

	_, err := New(newFakeS3(), cfg, Options{}).Deploy(context.Background())
	if err == nil || !strings.Contains(err.Error(), "G601") {
		t.Fatalf("expected G601, got %v", err)
	}
}

func TestDeployEmptyDist(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Deploy.Bucket = "glyph-test"

	_, err = New(newFakeS3(), cfg, Options{}).Deploy(context.Background())
	if err == nil || !strings.Contains(err.Error(), "G600") {
		t.Fatalf("expected G600, got %v", err)
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"site", "site/"},
		{"site/", "site/"},
		{"/site/", "site/"},
		{"a/b", "a/b/"},
	}
	for _, tt := range tests {
		if got := normalizePrefix(tt.in); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
