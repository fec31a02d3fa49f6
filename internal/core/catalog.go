package core

import (
	"fmt"
	"iter"
	"net/url"
	"strings"
	"sync"
)

// CohortKey identifies one uploaded result sheet: a year, department and
// semester, e.g. ("TE", "CS", "I").
type CohortKey struct {
	Year       string `json:"year" validate:"required"`
	Department string `json:"department" validate:"required"`
	Semester   string `json:"semester" validate:"required"`
}

// NewCohortKey trims its inputs and fails if any of them is empty.
func NewCohortKey(year, department, semester string) (CohortKey, error) {
	k := CohortKey{
		Year:       strings.TrimSpace(year),
		Department: strings.TrimSpace(department),
		Semester:   strings.TrimSpace(semester),
	}
	if k.Year == "" || k.Department == "" || k.Semester == "" {
		return CohortKey{}, fmt.Errorf("invalid cohort: year, department and semester are required")
	}
	return k, nil
}

// cohortFieldEscaper escapes the separator and the characters that would
// break a path or file name. PathUnescape inverts it.
var cohortFieldEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "%2F", "\\", "%5C")

// ParseCohortKey inverts CohortKey.ID.
func ParseCohortKey(s string) (CohortKey, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return CohortKey{}, fmt.Errorf("invalid cohort %q: want YEAR_DEPT_SEM", s)
	}
	for i, p := range parts {
		u, err := url.PathUnescape(p)
		if err != nil {
			return CohortKey{}, fmt.Errorf("invalid cohort %q: %w", s, err)
		}
		parts[i] = u
	}
	return NewCohortKey(parts[0], parts[1], parts[2])
}

// ID returns "YEAR_DEPT_SEM" with any separator, slash or percent sign inside
// a field percent-encoded. Distinct keys never share an ID.
func (k CohortKey) ID() string {
	return cohortFieldEscaper.Replace(k.Year) + "_" +
		cohortFieldEscaper.Replace(k.Department) + "_" +
		cohortFieldEscaper.Replace(k.Semester)
}

// String returns "YEAR_DEPT_SEM" unescaped, for display and logs.
func (k CohortKey) String() string {
	return k.Year + "_" + k.Department + "_" + k.Semester
}

// FileName returns the archive file name for the cohort's raw upload.
func (k CohortKey) FileName() string {
	return k.ID() + ".csv"
}

// Catalog maps cohorts to their most recently uploaded table.
//
// Entries live for the life of the process: Put replaces, nothing deletes.
// A single RWMutex is enough because writers replace whole tables and
// readers take whole tables; tables themselves are never modified.
type Catalog struct {
	mu      sync.RWMutex
	entries map[CohortKey]*Table
	order   []CohortKey
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[CohortKey]*Table)}
}

// Put stores t under key, replacing any previous table. A replaced key keeps
// its original position in Keys.
func (c *Catalog) Put(key CohortKey, t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = t
}

// Get returns the table stored under key or a *NotFoundError.
func (c *Catalog) Get(key CohortKey) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.entries[key]
	if !ok {
		return nil, &NotFoundError{Kind: "cohort", Key: key.String()}
	}
	return t, nil
}

// Keys returns the stored cohorts in insertion order.
//
// The sequence is lazy and can be ranged over any number of times; each
// iteration walks a snapshot taken when that iteration starts.
func (c *Catalog) Keys() iter.Seq[CohortKey] {
	return func(yield func(CohortKey) bool) {
		c.mu.RLock()
		snapshot := make([]CohortKey, len(c.order))
		copy(snapshot, c.order)
		c.mu.RUnlock()

		for _, k := range snapshot {
			if !yield(k) {
				return
			}
		}
	}
}

// Len returns the number of stored cohorts.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
