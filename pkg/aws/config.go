package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"timeclock.service/internal/config"
)

// NewAWSConfig creates a new AWS configuration. Local development uses static
// LocalStack credentials; elsewhere the standard credential chain applies.
func NewAWSConfig(ctx context.Context, appConfig config.Config) (aws.Config, error) {
	if appConfig.IsLocalDev {
		log.Info().Str("endpoint", appConfig.AWSEndpoint).Msg("Local development mode detected. Routing AWS calls to LocalStack.")
		return awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(appConfig.AWSRegion),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}

	log.Info().Msg("Production mode detected. Using standard AWS credential chain.")
	return awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(appConfig.AWSRegion))
}

// NewSQSClient returns an SQS client, pointed at AWS_ENDPOINT in local development.
func NewSQSClient(awsCfg aws.Config, appConfig config.Config) *sqs.Client {
	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if appConfig.IsLocalDev && appConfig.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(appConfig.AWSEndpoint)
		}
	})
}

// NewSESClient returns an SES client, pointed at AWS_ENDPOINT in local development.
func NewSESClient(awsCfg aws.Config, appConfig config.Config) *ses.Client {
	return ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if appConfig.IsLocalDev && appConfig.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(appConfig.AWSEndpoint)
		}
	})
}
