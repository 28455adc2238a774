// Package page slices query results into fixed size windows.
package page

import (
	"errors"
	"fmt"
	"log/slog"

	"chainx/core/state"
)

var (
	// ErrPageSize is returned when a page size of zero (or above the caller's
	// bound) is requested.
	ErrPageSize = errors.New("page: invalid page size")
	// ErrPageIndex is returned when the page index lies past the last page.
	ErrPageIndex = errors.New("page: page index out of range")
)

// Page is one window of a result set.
type Page[T any] struct {
	PageTotal uint32 `json:"pageTotal"`
	PageIndex uint32 `json:"pageIndex"`
	PageSize  uint32 `json:"pageSize"`
	Data      []T    `json:"data"`
}

// Direction selects the order a Scan walks its index range in.
type Direction uint8

const (
	// Ascending walks indices 0, 1, ..., n-1.
	Ascending Direction = iota
	// Descending walks n-1, ..., 0 so the most recent entries come first.
	Descending
)

// Fetcher loads the entry at index i. It reports false when nothing is
// stored there.
type Fetcher[T any] func(i uint64) (T, bool, error)

// Total returns the number of pages needed to hold count items.
func Total(count uint64, pageSize uint32) uint64 {
	if pageSize == 0 {
		return 0
	}
	return (count + uint64(pageSize) - 1) / uint64(pageSize)
}

// Paginate returns the window [pageIndex*pageSize, (pageIndex+1)*pageSize)
// of items. An empty list yields an empty page for any index.
func Paginate[T any](items []T, pageIndex, pageSize uint32) (*Page[T], error) {
	if pageSize == 0 {
		return nil, ErrPageSize
	}
	count := uint64(len(items))
	total := Total(count, pageSize)
	if total > 0 && uint64(pageIndex) >= total {
		return nil, fmt.Errorf("%w: index %d, total %d", ErrPageIndex, pageIndex, total)
	}
	start := uint64(pageIndex) * uint64(pageSize)
	end := start + uint64(pageSize)
	if end > count {
		end = count
	}
	data := make([]T, 0, end-min(start, end))
	if start < end {
		data = append(data, items[start:end]...)
	}
	return &Page[T]{
		PageTotal: uint32(total),
		PageIndex: pageIndex,
		PageSize:  pageSize,
		Data:      data,
	}, nil
}

// Scan walks the index range [0, n) in dir, skips absent or undecodable
// entries and paginates what remains. The whole range is visited so the page
// total reflects every materialized entry. Errors other than decode failures
// abort the scan. Skipped undecodable entries are logged to logger, or to
// slog.Default() when it is nil.
func Scan[T any](logger *slog.Logger, n uint64, dir Direction, pageIndex, pageSize uint32, fetch Fetcher[T]) (*Page[T], error) {
	if pageSize == 0 {
		return nil, ErrPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	start := uint64(pageIndex) * uint64(pageSize)
	end := start + uint64(pageSize)

	data := make([]T, 0)
	var seen uint64
	for step := uint64(0); step < n; step++ {
		i := step
		if dir == Descending {
			i = n - 1 - step
		}
		item, ok, err := fetch(i)
		if err != nil {
			if errors.Is(err, state.ErrDecode) {
				logger.Debug("page: skipping undecodable entry", "index", i, "error", err)
				continue
			}
			return nil, err
		}
		if !ok {
			continue
		}
		if seen >= start && seen < end {
			data = append(data, item)
		}
		seen++
	}

	total := Total(seen, pageSize)
	if total > 0 && uint64(pageIndex) >= total {
		return nil, fmt.Errorf("%w: index %d, total %d", ErrPageIndex, pageIndex, total)
	}
	return &Page[T]{
		PageTotal: uint32(total),
		PageIndex: pageIndex,
		PageSize:  pageSize,
		Data:      data,
	}, nil
}
