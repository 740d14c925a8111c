package meta

import (
	"os"
	"regexp"
)

var envExpr = regexp.MustCompile(`\$\{env\.([\p{L}\p{N}_]*)\}`)

// expandEnvExpr replaces every ${env.KEY} with the value of the environment
// variable KEY, or "" if unset. Malformed expressions are left as is.
func expandEnvExpr(value string) string {
	return envExpr.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(envExpr.FindStringSubmatch(match)[1])
	})
}
