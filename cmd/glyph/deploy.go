package main

import (
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/glyph-dev/glyph/internal/config"
	"github.com/glyph-dev/glyph/internal/deploy"
)

func deployCmd() *cobra.Command {
	var (
		bucket string
		prefix string
		region string
		prune  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the build output to S3",
		Long: `Upload the build output directory to the configured S3 bucket.

Credentials come from the standard AWS environment (env variables,
shared config, instance role). The bucket, region, and key prefix come
from the deploy section of glyph.json; flags override them.

Examples:
  glyph deploy
  glyph deploy --prune
  glyph deploy --bucket=my-site --prefix=widgets --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(bucket, prefix, region, prune, dryRun)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Target bucket (default from glyph.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from glyph.json)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from glyph.json)")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete remote objects with no local counterpart")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without uploading")

	return cmd
}

func runDeploy(bucket, prefix, region string, prune, dryRun bool) error {
	cfg, err := config.Find(".")
	if err != nil {
		return err
	}

	if bucket != "" {
		cfg.Deploy.Bucket = bucket
	}
	if prefix != "" {
		cfg.Deploy.Prefix = prefix
	}
	if region != "" {
		cfg.Deploy.Region = region
	}

	ctx, cancel := signalContext()
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Deploy.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Deploy.Region))
	}
	awscfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return err
	}
	client := s3.NewFromConfig(awscfg)

	deployer := deploy.New(client, cfg, deploy.Options{
		Prune:  prune,
		DryRun: dryRun,
		OnProgress: func(action, key string) {
			info("%s %s", action, key)
		},
	})

	result, err := deployer.Deploy(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	if dryRun {
		success("Dry run: %d to upload, %d to delete", len(result.Uploaded), len(result.Deleted))
		return nil
	}
	success("Deployed %d files to s3://%s/%s in %s",
		len(result.Uploaded), result.Bucket, result.Prefix, result.Duration.Round(time.Millisecond))
	if len(result.Deleted) > 0 {
		info("Pruned %d stale objects", len(result.Deleted))
	}
	return nil
}
