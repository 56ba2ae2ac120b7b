package dialect

import "strings"

// https://docs.snowflake.com/en/sql-reference/reserved-keywords
var reservedKeywords = map[string]bool{
	"account":           true,
	"all":               true,
	"alter":             true,
	"and":               true,
	"any":               true,
	"as":                true,
	"between":           true,
	"by":                true,
	"case":              true,
	"cast":              true,
	"check":             true,
	"column":            true,
	"connect":           true,
	"connection":        true,
	"constraint":        true,
	"create":            true,
	"cross":             true,
	"current":           true,
	"current_date":      true,
	"current_time":      true,
	"current_timestamp": true,
	"current_user":      true,
	"database":          true,
	"delete":            true,
	"distinct":          true,
	"drop":              true,
	"else":              true,
	"exists":            true,
	"false":             true,
	"following":         true,
	"for":               true,
	"from":              true,
	"full":              true,
	"grant":             true,
	"group":             true,
	"gscluster":         true,
	"having":            true,
	"ilike":             true,
	"in":                true,
	"increment":         true,
	"inner":             true,
	"insert":            true,
	"intersect":         true,
	"into":              true,
	"is":                true,
	"issue":             true,
	"join":              true,
	"lateral":           true,
	"left":              true,
	"like":              true,
	"localtime":         true,
	"localtimestamp":    true,
	"minus":             true,
	"natural":           true,
	"not":               true,
	"null":              true,
	"of":                true,
	"on":                true,
	"or":                true,
	"order":             true,
	"organization":      true,
	"qualify":           true,
	"regexp":            true,
	"revoke":            true,
	"right":             true,
	"rlike":             true,
	"row":               true,
	"rows":              true,
	"sample":            true,
	"schema":            true,
	"select":            true,
	"set":               true,
	"some":              true,
	"start":             true,
	"table":             true,
	"tablesample":       true,
	"then":              true,
	"to":                true,
	"trigger":           true,
	"true":              true,
	"try_cast":          true,
	"union":             true,
	"unique":            true,
	"update":            true,
	"using":             true,
	"values":            true,
	"view":              true,
	"when":              true,
	"whenever":          true,
	"where":             true,
	"with":              true,
}

func IsReservedKeyword(word string) bool {
	return reservedKeywords[strings.ToLower(word)]
}
