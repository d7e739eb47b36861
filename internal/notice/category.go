package notice

import (
	"sort"
	"strings"
)

// Category is the course a notice is addressed to.
type Category int

const (
	EE Category = iota
	SDM
	PSI
	Other

	categoryCount
)

type categoryInfo struct {
	code  string
	label string
	color string
}

// categories is indexed by Category. Adding a constant without a row here
// leaves an empty row, which TestCategoryTableComplete catches.
var categories = [categoryCount]categoryInfo{
	EE:    {code: "ee", label: "E&E", color: "#3c6f3c"},
	SDM:   {code: "sdm", label: "SDM", color: "#004389"},
	PSI:   {code: "psi", label: "PSI", color: "#be0b3c"},
	Other: {code: "other", label: "共通", color: "#a0a0a0"},
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory maps a category code as it appears on the page ("sdm") to a
// Category.
func ParseCategory(code string) (Category, error) {
	for c := Category(0); c < categoryCount; c++ {
		if categories[c].code == code {
			return c, nil
		}
	}
	return 0, &ParseError{Kind: KindCategory, Input: code, Msg: "unexpected category"}
}

func (c Category) valid() bool {
	return c >= 0 && c < categoryCount
}

// Code is the short code stored in the snapshot.
func (c Category) Code() string {
	if !c.valid() {
		return ""
	}
	return categories[c].code
}

// Label is the display name used in notifications.
func (c Category) Label() string {
	if !c.valid() {
		return ""
	}
	return categories[c].label
}

// Color is the attachment color for notices of this category.
func (c Category) Color() string {
	if !c.valid() {
		return ""
	}
	return categories[c].color
}

func (c Category) String() string {
	return c.Code()
}

// CategorySet is the set of categories being tracked.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from codes, failing on the first unknown one.
func NewCategorySet(codes ...string) (CategorySet, error) {
	set := make(CategorySet, len(codes))
	for _, code := range codes {
		c, err := ParseCategory(strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		set[c] = struct{}{}
	}
	return set, nil
}

// Has reports whether c is in the set.
func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// Codes returns the set's codes, sorted, for logging.
func (s CategorySet) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c.Code())
	}
	sort.Strings(out)
	return out
}
