package types

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ProjectKey identifies one tracked initiative within a reporting week
type ProjectKey string

// String returns the string representation
func (k ProjectKey) String() string {
	return string(k)
}

// Validate checks the key is non-empty and usable as a document/file name
func (k ProjectKey) Validate() error {
	if k == "" {
		return goerr.New("project key is empty")
	}
	if !projectKeyPattern.MatchString(string(k)) {
		return goerr.New("project key contains invalid characters", goerr.V("key", k))
	}
	return nil
}

var projectKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// WeekEnding is the reporting week identifier in YYYY-MM-DD form
type WeekEnding string

// WeekLayout is the date layout of WeekEnding
const WeekLayout = "2006-01-02"

var weekPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// String returns the string representation
func (w WeekEnding) String() string {
	return string(w)
}

// Validate checks the week is a real calendar date in YYYY-MM-DD form
func (w WeekEnding) Validate() error {
	if !weekPattern.MatchString(string(w)) {
		return goerr.New("week_ending must be YYYY-MM-DD", goerr.V("week", w))
	}
	if _, err := time.Parse(WeekLayout, string(w)); err != nil {
		return goerr.Wrap(err, "week_ending is not a valid date", goerr.V("week", w))
	}
	return nil
}

// WeekOf returns the WeekEnding for the date of t in UTC
func WeekOf(t time.Time) WeekEnding {
	return WeekEnding(t.UTC().Format(WeekLayout))
}

// ReceiptID identifies one accepted ingest request
type ReceiptID string

// String returns the string representation
func (id ReceiptID) String() string {
	return string(id)
}

// NewReceiptID creates a new ReceiptID using UUID v7
func NewReceiptID() ReceiptID {
	id, err := uuid.NewV7()
	if err != nil {
		return ReceiptID(uuid.New().String())
	}
	return ReceiptID(id.String())
}
