package sqlstore

import (
	"fmt"
	"strings"

	"users-service/internal/domain"
)

var filterColumns = map[domain.Field]string{
	domain.FieldFirstName: "first_name",
	domain.FieldLastName:  "last_name",
}

// compileWhere turns criteria into a WHERE clause and its arguments.
// Column names come from filterColumns only; values are always bound.
func compileWhere(criteria domain.Criteria, placeholder func(n int) string) (string, []any, error) {
	if len(criteria) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(criteria))
	args := make([]any, 0, len(criteria))
	for i, p := range criteria {
		column, ok := filterColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %d", p.Field)
		}
		clauses = append(clauses, fmt.Sprintf("%s = %s", column, placeholder(i+1)))
		args = append(args, p.Value)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}
