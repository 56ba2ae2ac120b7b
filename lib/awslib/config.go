package awslib

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/artie-labs/snowflow/lib/config"
)

func NewDefaultConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

// LoadConfig builds an AWS config for the export bucket.
// Static keys take precedence over the default credential chain and a role is assumed on top when one is set.
func LoadConfig(ctx context.Context, settings config.S3Settings) (aws.Config, error) {
	var awsCfg aws.Config
	var err error
	if settings.AwsAccessKeyID != "" && settings.AwsSecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(settings.AwsAccessKeyID, settings.AwsSecretAccessKey, "")
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithCredentialsProvider(creds),
			awsconfig.WithRegion(settings.Region),
		)
	} else {
		awsCfg, err = NewDefaultConfig(ctx, settings.Region)
	}

	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if settings.RoleARN != "" {
		stsClient := sts.NewFromConfig(awsCfg)
		awsCfg.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(stsClient, settings.RoleARN))
	}

	return awsCfg, nil
}
