package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 1000
)

// ClampPage keeps page within 1..MaxPage.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// Calculate turns a 1-based page and a size into offset and limit. Pages are
// clamped by ClampPage, an out of range size falls back to DefaultPageSize.
func Calculate(page, size int) (offset, limit int) {
	page = ClampPage(page)
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
