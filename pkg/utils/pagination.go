package utils

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxOffset bounds Page*Size so the offset never overflows and every
	// store accepts it as a skip.
	MaxOffset = math.MaxInt32
)

// PaginationParams holds pagination request parameters. Page is zero-based.
type PaginationParams struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

// PaginationMeta holds pagination response metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// GetPaginationParams clamps page to [0, MaxOffset/size] and size to
// [1, MaxPageSize], substituting DefaultPageSize when size is missing.
func GetPaginationParams(page, size int) PaginationParams {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > MaxOffset/size {
		page = MaxOffset / size
	}
	return PaginationParams{
		Page: page,
		Size: size,
	}
}

// CalculateOffset returns the number of rows to skip
func (p PaginationParams) CalculateOffset() int {
	if p.Page < 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > MaxOffset/p.Size {
		return MaxOffset
	}
	return p.Page * p.Size
}

// CalculateMeta generates pagination metadata
func CalculateMeta(total int64, page, size int) PaginationMeta {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := int(math.Ceil(float64(total) / float64(size)))
	if totalPages < 0 {
		totalPages = 0
	}

	return PaginationMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}
