package common

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTrxNo(t *testing.T) {
	trx := GenerateTrxNo()
	assert.Len(t, trx, 10)

	validChars := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, char := range trx {
		assert.True(t, strings.ContainsRune(validChars, char), "invalid character %c", char)
	}
}

func TestGenerateCode(t *testing.T) {
	code := GenerateCode("SJA2026")
	assert.True(t, strings.HasPrefix(code, "SJA2026-"))
	assert.Len(t, code, len("SJA2026-")+8)
	assert.NotEqual(t, code, GenerateCode("SJA2026"))
}

func TestReferralTokenIsOpaque(t *testing.T) {
	a, b := ReferralToken(), ReferralToken()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestFormatDateUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)

	// 20:00 UTC is already the next day in India
	instant := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", FormatDate(instant, time.UTC))
	assert.Equal(t, "2026-03-02", FormatDate(instant, kolkata))

	parsed, err := ParseDate("2026-03-02", kolkata)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", FormatDate(parsed, kolkata))

	_, err = ParseDate("02/03/2026", kolkata)
	assert.Error(t, err)
}

func TestPaging(t *testing.T) {
	page, limit, offset := Paging(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)
	assert.Equal(t, 0, offset)

	page, limit, offset = Paging(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, limit)
	assert.Equal(t, 200, offset)
}

func TestPaginateResponse(t *testing.T) {
	total := int64(100)
	data := []string{"item1", "item2"}

	res := PaginateResponse(data, total, 1, 10, "")
	assert.Equal(t, "success", res.Message)
	assert.Equal(t, 1, res.CurrentPage)
	assert.Equal(t, 10, res.LastPage)
	assert.Equal(t, 2, res.NextPage)
	assert.Equal(t, 0, res.PrevPage)
	assert.Equal(t, int64(100), res.Count)

	res = PaginateResponse(data, total, 10, 10, "")
	assert.Equal(t, 0, res.NextPage, "last page has no next page")

	res = PaginateResponse(data, total, 5, 10, "")
	assert.Equal(t, 4, res.PrevPage)
	assert.Equal(t, 6, res.NextPage)
}

func TestResponseEnvelopes(t *testing.T) {
	ok := NewSuccessResponse(map[string]int{"a": 1}, "done")
	assert.True(t, ok.Success)
	assert.Equal(t, 200, ok.Status)

	bad := NewErrorResponse("nope", nil, 422)
	assert.False(t, bad.Success)
	assert.Equal(t, 422, bad.Status)
	assert.Equal(t, "nope", bad.Message)
}
