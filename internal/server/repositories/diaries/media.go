package diaries

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// encodeMedia turns a URL list into the TEXT column value. Empty lists are
// stored as NULL.
func encodeMedia(urls []string) (sql.NullString, error) {
	if len(urls) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode media: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// decodeMedia is the inverse of encodeMedia. NULL and empty strings decode to
// an empty, non-nil slice.
func decodeMedia(v sql.NullString) ([]string, error) {
	if !v.Valid || v.String == "" {
		return []string{}, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(v.String), &urls); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}
