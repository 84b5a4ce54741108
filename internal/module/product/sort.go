package product

import (
	"strings"

	"github.com/simp-lee/glowingstore/internal/domain"
)

// sortableColumns maps the caller-facing sort field names to the columns they
// order by. Anything outside this table is rejected; the sort expression is
// never interpolated into SQL.
var sortableColumns = map[string]string{
	"name":               "name",
	"price":              "price",
	"quantity":           "quantity",
	"discountpercentage": "discount_percentage",
	"creationdate":       "creation_date",
}

// parseOrderBy converts a comma-separated sort expression like
// "Name, Price desc" into an ORDER BY clause. Each term is a field name
// optionally followed by "asc" or "desc". Unknown fields and malformed terms
// yield a validation error.
func parseOrderBy(orderBy string) (string, error) {
	terms := strings.Split(orderBy, ",")
	clauses := make([]string, 0, len(terms))

	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return "", domain.NewAppError(domain.CodeValidation, "invalid orderBy expression", nil)
		}

		column, ok := sortableColumns[strings.ToLower(fields[0])]
		if !ok {
			return "", domain.NewAppError(domain.CodeValidation, "unknown sort field "+fields[0], nil)
		}

		direction := ""
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
				direction = " ASC"
			case "desc":
				direction = " DESC"
			default:
				return "", domain.NewAppError(domain.CodeValidation, "invalid sort direction "+fields[1], nil)
			}
		}

		clauses = append(clauses, column+direction)
	}

	if len(clauses) == 0 {
		return "", domain.NewAppError(domain.CodeValidation, "orderBy is required", nil)
	}

	return strings.Join(clauses, ", "), nil
}
