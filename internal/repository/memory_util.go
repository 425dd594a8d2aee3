package repository

import (
	"database/sql"
	"time"
)

func nowNull() sql.NullTime {
	return sql.NullTime{Time: time.Now(), Valid: true}
}

func pageBounds(total, page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}
