package db

import (
	"errors"
	"io"
	"strings"
	"syscall"
)

var retryableErrs = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	io.EOF,
}

var retryableErrMessages = []string{
	"connection reset by peer",
	"connection refused",
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	for _, retryableErr := range retryableErrs {
		if errors.Is(err, retryableErr) {
			return true
		}
	}

	for _, msg := range retryableErrMessages {
		if strings.Contains(err.Error(), msg) {
			return true
		}
	}

	return false
}
