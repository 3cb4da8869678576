// Package s3 stores kvstore entries as objects in Amazon S3 or an
// S3-compatible service (MinIO, Wasabi, DigitalOcean Spaces).
//
//	var cfg s3.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	store, err := s3.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
// Each key becomes one object named KeyPrefix+key. Missing objects are
// reported as kvstore.ErrNotFound, whether S3 answers with a typed NoSuchKey
// or a generic API error code.
//
// MinIO needs a custom endpoint and path-style addressing:
//
//	cfg := s3.Config{
//		Bucket:         "hubauth",
//		Region:         "us-east-1",
//		AccessKeyID:    "minioadmin",
//		SecretKey:      "minioadmin",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//	}
//
// Tests pass a mock through WithS3Client; the S3Client interface covers only
// the four calls the store makes.
package s3
