package simulator

import (
	"errors"
)

var ErrNilStrategy = errors.New("nil connection strategy supplied")
var ErrNilRunLog = errors.New("nil run log supplied")
var ErrNilConnectionPool = errors.New("nil connection pool supplied")
var ErrEmptyConnString = errors.New("empty connection string supplied")
var ErrInvalidSampleCount = errors.New("sample count must not be negative")
var ErrInvalidRetryLimit = errors.New("retry limit must not be negative")
var ErrAcquireFailed = errors.New("connection acquisition failed")
var ErrOperationFailed = errors.New("operation execution failed")
var ErrPreflightFailed = errors.New("connectivity preflight failed")
