package domain

// PaginationParams is an offset window over a list: skip From rows, return at most Size.
type PaginationParams struct {
	From int
	Size int
}

// Offset returns the number of rows to skip.
func (p PaginationParams) Offset() int {
	return max(p.From, 0)
}

// Limit returns the window size, or 0 when unset.
func (p PaginationParams) Limit() int {
	return max(p.Size, 0)
}
