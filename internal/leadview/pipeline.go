package leadview

import (
	"sort"
	"strings"
	"time"

	"leadsync/internal/models"
)

// Page is one rendered page of the lead table
type Page struct {
	Leads      []models.Lead `json:"leads"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	// Filtered is the row count after dedupe and filters
	Filtered int `json:"filtered"`
	// Unique is the row count after dedupe only
	Unique int `json:"unique"`
	// Total is the size of the underlying collection, duplicates included
	Total   int    `json:"total"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	Sort    Sorter `json:"sort"`
}

// Apply runs the table pipeline over leads. The input slice is not modified.
func Apply(leads []models.Lead, q Query, now time.Time) Page {
	rows, unique := selectRows(leads, q, now)
	items, page, totalPages := Paginate(rows, q.Page)

	result := Page{
		Leads:      items,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages,
		Filtered:   len(rows),
		Unique:     unique,
		Total:      len(leads),
		Sort:       q.Sort,
	}
	if len(rows) == 0 {
		result.Empty = true
		result.Message = EmptyMessage
	}
	return result
}

// Select returns every row the query matches, deduped, filtered and sorted
// but not paginated
func Select(leads []models.Lead, q Query, now time.Time) []models.Lead {
	rows, _ := selectRows(leads, q, now)
	return rows
}

func selectRows(leads []models.Lead, q Query, now time.Time) ([]models.Lead, int) {
	rows := leads
	if q.HideDuplicates {
		rows = Dedupe(leads)
	}
	unique := len(rows)

	rows = Filter(rows, q, now)
	Sort(rows, q.Sort)
	return rows, unique
}

// Dedupe keeps the first lead per case-insensitive email. Leads without an
// email are never merged.
func Dedupe(leads []models.Lead) []models.Lead {
	seen := make(map[string]struct{}, len(leads))
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		key := strings.ToLower(strings.TrimSpace(l.Email))
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, l)
	}
	return out
}

// Filter applies search, status and date filters into a new slice
func Filter(leads []models.Lead, q Query, now time.Time) []models.Lead {
	search := strings.ToLower(q.Search)
	since, bounded := DateFloor(q.Date, now)

	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if search != "" && !matchesSearch(l, q.Search, search) {
			continue
		}
		if q.Status != "" && q.Status != StatusAll && string(l.Status) != q.Status {
			continue
		}
		if bounded && l.CreatedAt.Before(since) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesSearch(l models.Lead, raw, lowered string) bool {
	return strings.Contains(strings.ToLower(l.Name), lowered) ||
		strings.Contains(strings.ToLower(l.Email), lowered) ||
		strings.Contains(strings.ToLower(l.Company), lowered) ||
		strings.Contains(l.Phone, raw)
}

// DateFloor returns the earliest creation time admitted by the range, and
// false for DateAll
func DateFloor(r DateRange, now time.Time) (time.Time, bool) {
	switch r {
	case DateToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case DateWeek:
		return now.AddDate(0, 0, -7), true
	case DateMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

// Sort orders leads in place. createdAt compares by timestamp; every other
// field compares as a string. The sort is stable.
func Sort(leads []models.Lead, s Sorter) {
	if s.Field == "" {
		return
	}
	desc := s.Direction == Desc
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		if s.Field == FieldCreatedAt {
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		av, bv := fieldValue(a, s.Field), fieldValue(b, s.Field)
		if desc {
			return av > bv
		}
		return av < bv
	})
}

func fieldValue(l models.Lead, f Field) string {
	switch f {
	case FieldName:
		return l.Name
	case FieldEmail:
		return l.Email
	case FieldPhone:
		return l.Phone
	case FieldCompany:
		return l.Company
	case FieldSource:
		return l.Source
	case FieldStatus:
		return string(l.Status)
	default:
		return ""
	}
}

// Paginate slices out one page, clamping the page number into
// [1, totalPages]. An empty list has zero pages and reports page 1.
func Paginate(leads []models.Lead, page int) ([]models.Lead, int, int) {
	totalPages := (len(leads) + PageSize - 1) / PageSize
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * PageSize
	if start >= len(leads) {
		return []models.Lead{}, page, totalPages
	}
	end := start + PageSize
	if end > len(leads) {
		end = len(leads)
	}
	items := make([]models.Lead, end-start)
	copy(items, leads[start:end])
	return items, page, totalPages
}
