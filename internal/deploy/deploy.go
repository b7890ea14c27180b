package deploy

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glyph-dev/glyph/internal/config"
	"github.com/glyph-dev/glyph/internal/errors"
)

// API is the subset of the S3 client the deployer needs. *s3.Client
// satisfies it; tests substitute an in-memory fake.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures a deploy.
type Options struct {
	// DryRun lists what would change without touching the bucket.
	DryRun bool

	// Prune removes remote objects under the prefix that have no local
	// counterpart.
	Prune bool

	// OnProgress is called once per uploaded or deleted key.
	OnProgress func(action, key string)
}

// Result describes what a deploy did.
type Result struct {
	Bucket   string
	Prefix   string
	Uploaded []string
	Deleted  []string
	Duration time.Duration
}

// Deployer syncs the build output directory to an S3 bucket.
type Deployer struct {
	client  API
	config  *config.Config
	options Options
}

// New creates a deployer for the project. The bucket and prefix come from
// the deploy section of glyph.json.
func New(client API, cfg *config.Config, options Options) *Deployer {
	return &Deployer{client: client, config: cfg, options: options}
}

// Deploy uploads every file under the output directory to the configured
// bucket, keyed by its path relative to the output directory. With Prune it
// then removes stale remote objects under the prefix.
func (d *Deployer) Deploy(ctx context.Context) (*Result, error) {
	bucket := d.config.Deploy.Bucket
	if bucket == "" {
		return nil, errors.New("G601").
			WithSuggestion(`add {"deploy": {"bucket": "..."}} to glyph.json`)
	}

	start := time.Now()
	prefix := normalizePrefix(d.config.Deploy.Prefix)
	result := &Result{Bucket: bucket, Prefix: prefix}

	files, err := d.localFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("G600").
			WithDetailf("output directory %s is empty", d.config.OutputDir()).
			WithSuggestion("run glyph build first")
	}

	for _, rel := range files {
		key := prefix + rel
		if err := d.upload(ctx, bucket, key, filepath.Join(d.config.OutputDir(), filepath.FromSlash(rel))); err != nil {
			return result, err
		}
		result.Uploaded = append(result.Uploaded, key)
		d.progress("upload", key)
	}

	if d.options.Prune {
		deleted, err := d.prune(ctx, bucket, prefix, files)
		if err != nil {
			return result, err
		}
		result.Deleted = deleted
	}

	result.Duration = time.Since(start)
	return result, nil
}

// localFiles returns the files under the output directory as sorted
// slash-separated paths relative to it.
func (d *Deployer) localFiles() ([]string, error) {
	root := d.config.OutputDir()
	var files []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("G600").
				WithDetailf("output directory %s does not exist", root).
				WithSuggestion("run glyph build first")
		}
		return nil, errors.New("G600").Wrap(err)
	}
	sort.Strings(files)
	return files, nil
}

func (d *Deployer) upload(ctx context.Context, bucket, key, path string) error {
	if d.options.DryRun {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.New("G600").Wrap(err)
	}
	defer f.Close()

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(contentType(key)),
		CacheControl: aws.String(cacheControl(key)),
		Metadata: map[string]string{
			"deploy-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("G600").
			WithDetailf("put s3://%s/%s", bucket, key).
			Wrap(err)
	}
	return nil
}

// prune deletes remote objects under the prefix that are not in the local
// file set.
func (d *Deployer) prune(ctx context.Context, bucket, prefix string, files []string) ([]string, error) {
	local := make(map[string]bool, len(files))
	for _, rel := range files {
		local[prefix+rel] = true
	}

	var stale []string
	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("G600").
				WithDetailf("list s3://%s/%s", bucket, prefix).
				Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && !local[*obj.Key] {
				stale = append(stale, *obj.Key)
			}
		}
	}
	sort.Strings(stale)

	if d.options.DryRun {
		return stale, nil
	}
	for _, key := range stale {
		_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, errors.New("G600").
				WithDetailf("delete s3://%s/%s", bucket, key).
				Wrap(err)
		}
		d.progress("delete", key)
	}
	return stale, nil
}

func (d *Deployer) progress(action, key string) {
	if d.options.OnProgress != nil {
		d.options.OnProgress(action, key)
	}
}

// normalizePrefix ensures a non-empty prefix ends with exactly one slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func contentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".json":
		return "application/json"
	case ".css":
		return "text/css; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// cacheControl keeps the manifest fresh while letting artifacts and the
// bundle cache briefly.
func cacheControl(key string) string {
	if strings.HasSuffix(key, "manifest.json") {
		return "no-cache"
	}
	return "public, max-age=300"
}
