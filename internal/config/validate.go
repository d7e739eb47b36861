package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"si-notice-monitor/internal/crawler"
	"si-notice-monitor/internal/notice"
	"si-notice-monitor/internal/storage"
)

// ValidationError reports one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error

	if err := validateURL("source.url", c.Source.URL); err != nil {
		errs = append(errs, err)
	}
	switch c.Source.Mode {
	case crawler.ModeHTTP, crawler.ModeBrowser:
	default:
		errs = append(errs, &ValidationError{Field: "source.mode", Message: "must be one of: http, browser"})
	}
	if len(c.Source.NotifyCategories) == 0 {
		errs = append(errs, &ValidationError{Field: "source.notify_categories", Message: "is required"})
	} else if _, err := notice.NewCategorySet(c.Source.NotifyCategories...); err != nil {
		errs = append(errs, &ValidationError{Field: "source.notify_categories", Message: err.Error()})
	}

	if c.Slack.WebhookURL == "" {
		errs = append(errs, &ValidationError{Field: "slack.webhook_url", Message: "is required"})
	} else if err := validateURL("slack.webhook_url", c.Slack.WebhookURL); err != nil {
		errs = append(errs, err)
	}

	switch c.Storage.Driver {
	case storage.DriverCSV, storage.DriverSQLite:
	default:
		errs = append(errs, &ValidationError{Field: "storage.driver", Message: "must be one of: csv, sqlite"})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Field: "log.level", Message: "must be one of: debug, info, warn, error"})
	}

	return errors.Join(errs...)
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute URL"}
	}
	return nil
}
