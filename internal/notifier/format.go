// Package notifier turns new notices into a chat webhook message and
// delivers it.
package notifier

import (
	"si-notice-monitor/internal/notice"
)

// Defaults match the channel's existing messages.
const (
	DefaultText          = "新しいお知らせ"
	DefaultDateField     = "日付"
	DefaultCategoryField = "コース"
)

// Message is the incoming-webhook payload.
type Message struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment renders one notice.
type Attachment struct {
	Color     string  `json:"color"`
	Title     string  `json:"title"`
	TitleLink string  `json:"title_link"`
	Fields    []Field `json:"fields"`
}

// Field is a short labelled value shown under the attachment title.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Formatter lays out notices as attachments.
type Formatter struct {
	Text          string
	DateField     string
	CategoryField string
}

// NewFormatter fills empty labels with the defaults.
func NewFormatter(text, dateField, categoryField string) Formatter {
	f := Formatter{Text: text, DateField: dateField, CategoryField: categoryField}
	if f.Text == "" {
		f.Text = DefaultText
	}
	if f.DateField == "" {
		f.DateField = DefaultDateField
	}
	if f.CategoryField == "" {
		f.CategoryField = DefaultCategoryField
	}
	return f
}

// Attachments returns one attachment per notice, in order.
func (f Formatter) Attachments(notices []notice.CategorizedNotice) []Attachment {
	out := make([]Attachment, 0, len(notices))
	for _, n := range notices {
		out = append(out, Attachment{
			Color:     n.Category.Color(),
			Title:     n.Title,
			TitleLink: n.Link,
			Fields: []Field{
				{Title: f.DateField, Value: notice.FormatISODate(n.Date), Short: true},
				{Title: f.CategoryField, Value: n.CategoryLabel(), Short: true},
			},
		})
	}
	return out
}

// Build returns the message for notices. ok is false when there is nothing
// to announce, in which case nothing should be sent at all.
func (f Formatter) Build(notices []notice.CategorizedNotice) (msg Message, ok bool) {
	if len(notices) == 0 {
		return Message{}, false
	}
	return Message{Text: f.Text, Attachments: f.Attachments(notices)}, true
}
