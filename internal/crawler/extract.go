// Package crawler fetches the department announcement page and turns its
// notice list into typed records.
package crawler

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"si-notice-monitor/internal/notice"
)

// Page structure of the student notice list.
const (
	listSelector     = "#notic_students_list"
	blockSelector    = listSelector + " > li > div"
	dateSelector     = "p.date"
	categorySelector = "p.cat > strong"
	titleSelector    = "p.title > a"
)

// Extractor reads notices out of the listing page.
type Extractor struct {
	// BaseURL resolves relative links. Links are kept as-is when empty.
	BaseURL string
	// Notified holds the categories to keep. Blocks in other categories are
	// validated and then dropped.
	Notified notice.CategorySet
}

// NewExtractor returns an extractor for the page at baseURL.
func NewExtractor(baseURL string, notified notice.CategorySet) *Extractor {
	return &Extractor{BaseURL: baseURL, Notified: notified}
}

// ExtractBytes is Extract over an in-memory page.
func (e *Extractor) ExtractBytes(body []byte) ([]notice.CategorizedNotice, error) {
	return e.Extract(bytes.NewReader(body))
}

// Extract returns the notified notices in document order. A page without
// the list container, or any malformed block, fails the whole extraction.
// An empty container yields an empty list.
func (e *Extractor) Extract(r io.Reader) ([]notice.CategorizedNotice, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &notice.ParseError{Kind: notice.KindStructure, Msg: "parse html", Err: err}
	}

	var base *url.URL
	if e.BaseURL != "" {
		base, err = url.Parse(e.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url %q: %w", e.BaseURL, err)
		}
	}

	if doc.Find(listSelector).Length() == 0 {
		return nil, missing(listSelector)
	}

	var (
		notices  = make([]notice.CategorizedNotice, 0)
		blockErr error
	)
	doc.Find(blockSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		n, err := parseBlock(s, base)
		if err != nil {
			blockErr = fmt.Errorf("notice block %d: %w", i, err)
			return false
		}
		if e.Notified.Has(n.Category) {
			notices = append(notices, n)
		}
		return true
	})
	if blockErr != nil {
		return nil, blockErr
	}
	return notices, nil
}

func parseBlock(s *goquery.Selection, base *url.URL) (notice.CategorizedNotice, error) {
	dateSel := s.Find(dateSelector).First()
	if dateSel.Length() == 0 {
		return notice.CategorizedNotice{}, missing(dateSelector)
	}
	// only the leading text node; the element may carry trailing markup
	dateNode := dateSel.Contents().First()
	if dateNode.Length() == 0 {
		return notice.CategorizedNotice{}, missing(dateSelector + " text")
	}
	date, err := notice.ParseDate(strings.TrimSpace(dateNode.Text()))
	if err != nil {
		return notice.CategorizedNotice{}, err
	}

	catSel := s.Find(categorySelector).First()
	if catSel.Length() == 0 {
		return notice.CategorizedNotice{}, missing(categorySelector)
	}
	classes := strings.Fields(catSel.AttrOr("class", ""))
	if len(classes) == 0 {
		return notice.CategorizedNotice{}, missing(categorySelector + " class")
	}

	anchor := s.Find(titleSelector).First()
	if anchor.Length() == 0 {
		return notice.CategorizedNotice{}, missing(titleSelector)
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return notice.CategorizedNotice{}, missing(titleSelector + " href")
	}
	title := strings.TrimSpace(anchor.Text())
	if title == "" {
		return notice.CategorizedNotice{}, missing(titleSelector + " text")
	}

	link, err := resolve(base, strings.TrimSpace(href))
	if err != nil {
		return notice.CategorizedNotice{}, err
	}

	return notice.NewCategorized(date, link, title, classes[0])
}

func resolve(base *url.URL, href string) (string, error) {
	if base == nil {
		return href, nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", &notice.ParseError{Kind: notice.KindStructure, Input: href, Msg: "bad link", Err: err}
	}
	return base.ResolveReference(ref).String(), nil
}

func missing(what string) error {
	return &notice.ParseError{Kind: notice.KindStructure, Msg: "missing " + what}
}
