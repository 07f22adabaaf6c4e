package templates

import (
	"strings"
	"time"
)

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithCompany(name string) Option {
	return func(d *EmailData) { d.CompanyName = strings.TrimSpace(name) }
}

func WithSupportURL(url string) Option { return func(d *EmailData) { d.SupportURL = url } }

// NewWelcomeData fills the welcome email fields for a newly registered user.
func NewWelcomeData(name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
