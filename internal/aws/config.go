package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// DefaultEndpoint is the dynamodb-local address used when DYNAMODB_ENDPOINT
// is unset. The workshop compose file overrides it with the container name.
const DefaultEndpoint = "http://localhost:8000"

// Endpoint returns the storage endpoint override. Setting DYNAMODB_ENDPOINT
// to an empty string selects the SDK's normal endpoint resolution (real AWS).
func Endpoint() string {
	if v, ok := os.LookupEnv("DYNAMODB_ENDPOINT"); ok {
		return v
	}
	return DefaultEndpoint
}

func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1" // default fallback
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	// dynamodb-local accepts any signature, but the SDK still insists on
	// having credentials to sign with.
	if Endpoint() != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}
