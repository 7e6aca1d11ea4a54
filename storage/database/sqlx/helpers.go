package sqlxrepos

import (
	"strings"

	"github.com/vipinkoroth/sarvodaya/core"
)

// orderingClause renders an ORDER BY clause, falling back to the repo's
// default order when none is given.
func orderingClause(ordering []core.DBOrdering, deflt string) string {
	if len(ordering) == 0 {
		if deflt == "" {
			return ""
		}
		return " ORDER BY " + deflt
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}
