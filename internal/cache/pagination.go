package cache

const (
	// MaxPageLimit caps the page size of the paginated listing.
	MaxPageLimit = 100
	// MaxTrendLimit caps the per-trend listing.
	MaxTrendLimit = 1000
)

// ClampLimit forces limit into [1, max].
func ClampLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}

// ClampPage forces page to at least 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Pages returns ceil(total/limit).
func Pages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
