package s3

import "time"

// Config holds the bucket location and credentials.
// Empty credentials fall back to the default AWS chain (env, IAM role).
// Endpoint and ForcePathStyle are for MinIO and other S3-compatible services.
type Config struct {
	Bucket         string        `env:"S3_BUCKET,required"`
	Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"S3_SECRET_KEY"`
	Endpoint       string        `env:"S3_ENDPOINT"`
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	KeyPrefix      string        `env:"S3_KEY_PREFIX" envDefault:"hubauth/"`
	Timeout        time.Duration `env:"S3_TIMEOUT" envDefault:"30s"`
}
