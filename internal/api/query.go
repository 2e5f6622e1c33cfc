package api

import (
	"net/url"
	"strconv"
	"strings"

	"waiwaier/internal/ddl"
)

func queryBool(q url.Values, key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(q.Get(key)))
	switch v {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func queryInt(q url.Values, key string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(q.Get(key))); err == nil {
		return n
	}
	return fallback
}

// parseDDLParams reads ?dialect=&fk=&comments=&drop=.
func parseDDLParams(q url.Values) (ddl.Options, error) {
	opts := ddl.DefaultOptions()
	d, err := ddl.ParseDialect(q.Get("dialect"))
	if err != nil {
		return opts, err
	}
	opts.Dialect = d
	opts.ForeignKeys = queryBool(q, "fk", opts.ForeignKeys)
	opts.Comments = queryBool(q, "comments", opts.Comments)
	opts.DropTable = queryBool(q, "drop", opts.DropTable)
	return opts, nil
}
