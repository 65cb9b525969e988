package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

const defaultQueryTimeout = 5 * time.Second

type requestMetaKey struct{}

type requestMeta struct {
	IP        string
	UserAgent string
}

// WithRequestMeta attaches the caller's address and user agent for audit entries.
func WithRequestMeta(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, requestMeta{IP: ip, UserAgent: userAgent})
}

func requestMetaFrom(ctx context.Context) requestMeta {
	if m, ok := ctx.Value(requestMetaKey{}).(requestMeta); ok {
		return m
	}
	return requestMeta{}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}

// authorize turns an access decision into ErrPermissionDenied.
func authorize(actor access.Actor, roles ...models.Role) error {
	if d, ok := access.Authorize(actor, roles...).(access.Denied); ok {
		return denied(d.Reason)
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a case-folded LIKE pattern for "LIKE ? ESCAPE '!'"
// that matches v literally anywhere in the column.
func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}

// calendarDate returns midnight UTC of t's calendar date in loc.
// Report and activation dates are stored this way regardless of driver.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sameDate compares two stored dates by calendar day.
func sameDate(a, b time.Time) bool {
	return a.UTC().Format(DateLayout) == b.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD value for field.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalidField(field, "is required")
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, invalidField(field, "must be a date in YYYY-MM-DD form")
	}
	return d, nil
}

// ratio divides n by d, substituting 1 for a zero denominator.
func ratio(n, d int64) float64 {
	if d == 0 {
		d = 1
	}
	return float64(n) / float64(d)
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
