package pkg

// ListResult is the envelope for paginated query results.
type ListResult[T any] struct {
	Content     []T   `json:"content"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewListResult builds a ListResult from already-paged content.
func NewListResult[T any](content []T, totalCount, totalPages int64, hasNextPage bool) ListResult[T] {
	if content == nil {
		content = []T{}
	}
	return ListResult[T]{
		Content:     content,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNextPage: hasNextPage,
	}
}
