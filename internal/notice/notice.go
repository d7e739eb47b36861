// Package notice defines the announcement records scraped from the department
// page and the rules for telling an old notice from a new one.
package notice

import (
	"time"
)

// Notice is one announcement entry.
type Notice struct {
	Date  time.Time
	Link  string
	Title string
}

// Key returns the identity of the notice. Only the title counts: two notices
// with the same title are the same notice even if date or link differ.
func (n Notice) Key() string {
	return n.Title
}

func (n Notice) String() string {
	return n.Title
}

// CategorizedNotice is a notice posted to a course category.
// Build it with NewCategorized so the category is always a known one.
type CategorizedNotice struct {
	Notice
	Category Category
}

// NewCategorized validates code and returns the notice. An unknown category
// code fails here rather than later at formatting time.
func NewCategorized(date time.Time, link, title, code string) (CategorizedNotice, error) {
	cat, err := ParseCategory(code)
	if err != nil {
		return CategorizedNotice{}, err
	}
	return CategorizedNotice{
		Notice:   Notice{Date: date, Link: link, Title: title},
		Category: cat,
	}, nil
}

// CategoryLabel is the human readable course name.
func (n CategorizedNotice) CategoryLabel() string {
	return n.Category.Label()
}

// SameTitle reports whether a and b are the same notice.
func SameTitle(a, b CategorizedNotice) bool {
	return a.Key() == b.Key()
}
