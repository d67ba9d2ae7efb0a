package support

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// AWSConfig loads the default credential chain, pinning the region when one
// is configured for the journal table.
func AWSConfig(ctx context.Context, cfg *Config) (aws.Config, error) {
	var options []func(*config.LoadOptions) error
	if cfg.Dynamo.Region != "" {
		options = append(options, config.WithRegion(cfg.Dynamo.Region))
	}

	return config.LoadDefaultConfig(ctx, options...)
}
