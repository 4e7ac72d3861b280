// Package leadview derives the lead table from the cached lead list: dedupe,
// filter, sort and paginate, always in that order.
package leadview

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PageSize is the fixed number of rows per page
const PageSize = 10

// EmptyMessage is shown in place of rows when nothing matches
const EmptyMessage = "No leads found"

// DateRange restricts leads by creation time
type DateRange string

const (
	DateAll   DateRange = "all"
	DateToday DateRange = "today"
	DateWeek  DateRange = "week"
	DateMonth DateRange = "month"
)

// StatusAll disables the status filter
const StatusAll = "all"

// Field is a sortable column
type Field string

const (
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldCompany   Field = "company"
	FieldSource    Field = "source"
	FieldStatus    Field = "status"
	FieldCreatedAt Field = "createdAt"
)

var sortableFields = map[Field]bool{
	FieldName:      true,
	FieldEmail:     true,
	FieldPhone:     true,
	FieldCompany:   true,
	FieldSource:    true,
	FieldStatus:    true,
	FieldCreatedAt: true,
}

// Direction is the sort order
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query is the full set of table controls
type Query struct {
	HideDuplicates bool
	Search         string
	Status         string
	Date           DateRange
	Sort           Sorter
	Page           int
}

// DefaultQuery hides duplicates and shows newest first
func DefaultQuery() Query {
	return Query{
		HideDuplicates: true,
		Status:         StatusAll,
		Date:           DateAll,
		Sort:           Sorter{Field: FieldCreatedAt, Direction: Desc},
		Page:           1,
	}
}

// ParseQuery reads table controls from URL query values. Unknown values fall
// back to the defaults except for an unknown sort field or date range, which
// are errors so the caller can report them. toggle selects a column the way
// Sorter.Toggle does, starting from sort and dir.
func ParseQuery(values url.Values) (Query, error) {
	q := DefaultQuery()

	if v := values.Get("hide_duplicates"); v != "" {
		hide, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid hide_duplicates %q", v)
		}
		q.HideDuplicates = hide
	}

	q.Search = strings.TrimSpace(values.Get("search"))

	if v := strings.TrimSpace(values.Get("status")); v != "" {
		q.Status = strings.ToLower(v)
	}

	if v := values.Get("date"); v != "" {
		switch DateRange(v) {
		case DateAll, DateToday, DateWeek, DateMonth:
			q.Date = DateRange(v)
		default:
			return q, fmt.Errorf("invalid date range %q", v)
		}
	}

	if v := values.Get("sort"); v != "" {
		if !sortableFields[Field(v)] {
			return q, fmt.Errorf("invalid sort field %q", v)
		}
		q.Sort.Field = Field(v)
	}
	if v := strings.ToLower(values.Get("dir")); v != "" {
		switch Direction(v) {
		case Asc, Desc:
			q.Sort.Direction = Direction(v)
		default:
			return q, fmt.Errorf("invalid sort direction %q", v)
		}
	}
	// A column header click: applied on top of the current sort and dir
	if v := values.Get("toggle"); v != "" {
		if !sortableFields[Field(v)] {
			return q, fmt.Errorf("invalid sort field %q", v)
		}
		q.Sort = q.Sort.Toggle(Field(v))
	}

	if v := values.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", v)
		}
		q.Page = page
	}

	return q, nil
}
