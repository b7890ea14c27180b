// Package deploy publishes the build output directory to AWS S3.
//
// A deploy walks the dist directory, uploads every file under the
// configured key prefix with an appropriate content type, and can prune
// remote objects that no longer exist locally. The deployer talks to S3
// through a narrow interface so tests run against an in-memory bucket.
package deploy
