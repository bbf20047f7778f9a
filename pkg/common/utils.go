package common

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used for accrual dates.
const DateLayout = "2006-01-02"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func GenerateTrxNo() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	result := make([]byte, 10)
	for i := range result {
		result[i] = characters[rand.IntN(len(characters))]
	}
	return string(result)
}

// GenerateCode returns prefix followed by eight upper-case characters of a
// random UUID, e.g. SJA2026-1F0C9A2B.
func GenerateCode(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%s", prefix, id[:8])
}

// ReferralToken is the opaque sponsor code handed out to users.
func ReferralToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// FormatDate renders t as a calendar day in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// Paging normalises page/limit query values and returns the row offset.
func Paging(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}
