package domain

// Field identifies a user column that lookups may filter on.
type Field int

const (
	FieldFirstName Field = iota + 1
	FieldLastName
)

func (f Field) String() string {
	switch f {
	case FieldFirstName:
		return "first_name"
	case FieldLastName:
		return "last_name"
	default:
		return "unknown"
	}
}

// Predicate is an equality test of a single field against a value.
type Predicate struct {
	Field Field
	Value string
}

// FirstNameIs matches records whose first name equals v.
func FirstNameIs(v string) Predicate {
	return Predicate{Field: FieldFirstName, Value: v}
}

// LastNameIs matches records whose last name equals v.
func LastNameIs(v string) Predicate {
	return Predicate{Field: FieldLastName, Value: v}
}

// Criteria is a conjunction of predicates. An empty Criteria matches every record.
type Criteria []Predicate

// And returns a copy of c extended with p.
func (c Criteria) And(p Predicate) Criteria {
	out := make(Criteria, 0, len(c)+1)
	out = append(out, c...)
	return append(out, p)
}

