package document_repo

import "strings"

// voucher columns allowed in ORDER BY; anything else falls back to the
// default so user input never reaches the SQL text.
var orderableCols = map[string]struct{}{
	"date":           {},
	"voucher_number": {},
	"created_at":     {},
	"updated_at":     {},
}

// parseOrderBy maps "-field"/"field" to a safe ORDER BY clause.
func parseOrderBy(orderBy string) string {
	direction := "ASC"
	field := strings.TrimSpace(orderBy)

	if strings.HasPrefix(field, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(field, "-")
	} else if strings.HasPrefix(field, "+") {
		field = strings.TrimPrefix(field, "+")
	}

	if _, ok := orderableCols[field]; !ok {
		return "date DESC, voucher_number DESC"
	}
	return field + " " + direction
}
