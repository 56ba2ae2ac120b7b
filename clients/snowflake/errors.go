package snowflake

import (
	"errors"
	"strings"

	"github.com/snowflakedb/gosnowflake"
)

// https://docs.snowflake.com/en/user-guide/jdbc-driver-error-codes
const objectDoesNotExistErrNumber = 2003

func AuthenticationExpirationErr(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), "Authentication token has expired")
}

// IsObjectDoesNotExistErr returns true when Snowflake rejected a query because the object it referenced is missing,
// e.g. querying the INFORMATION_SCHEMA of a database that has not been created yet.
func IsObjectDoesNotExistErr(err error) bool {
	if err == nil {
		return false
	}

	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) && sfErr.Number == objectDoesNotExistErrNumber {
		return true
	}

	return strings.Contains(err.Error(), "does not exist or not authorized")
}
