package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis: invalid connection URL")
	ErrRedisNotReady                = errors.New("redis: server did not answer ping before retries ran out")
	ErrEmptyConnectionURL           = errors.New("redis: connection URL is empty")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
