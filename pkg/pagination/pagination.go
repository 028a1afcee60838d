package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/chieftain/pkg/enums"
)

const (
	// DefaultSize is the standard page size when a size is not provided.
	DefaultSize = 20
	// MaxSize caps how many items any listing can request.
	MaxSize = 100
)

// Params holds page-based pagination inputs. Page is 1-based.
type Params struct {
	Page      int
	Size      int
	SortBy    string
	Direction enums.SortDirection
}

// Default returns the first page at the default size.
func Default() Params {
	return Params{Page: 1, Size: DefaultSize}
}

// Validate rejects out-of-range pages and sizes.
func (p Params) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be at least 1")
	}
	if p.Size < 1 || p.Size > MaxSize {
		return fmt.Errorf("size must be between 1 and %d", MaxSize)
	}
	if p.Direction != "" && !p.Direction.IsValid() {
		return fmt.Errorf("invalid sort direction %q", p.Direction)
	}
	return nil
}

// Parse reads page, size, sortBy and sortDir from raw query values, applying
// defaults for blanks.
func Parse(page, size, sortBy, sortDir string) (Params, error) {
	p := Default()
	if strings.TrimSpace(page) != "" {
		v, err := strconv.Atoi(page)
		if err != nil {
			return Params{}, fmt.Errorf("page must be a number")
		}
		p.Page = v
	}
	if strings.TrimSpace(size) != "" {
		v, err := strconv.Atoi(size)
		if err != nil {
			return Params{}, fmt.Errorf("size must be a number")
		}
		p.Size = v
	}
	p.SortBy = strings.TrimSpace(sortBy)
	if dir := strings.ToUpper(strings.TrimSpace(sortDir)); dir != "" {
		parsed, err := enums.ParseSortDirection(dir)
		if err != nil {
			return Params{}, err
		}
		p.Direction = parsed
	}
	return p, p.Validate()
}

// Page is one slice of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Slice cuts a full in-memory listing into the requested page.
func Slice[T any](all []T, p Params) Page[T] {
	total := len(all)
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	start := (p.Page - 1) * p.Size
	if start > total {
		start = total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return Page[T]{Items: items, Page: p.Page, Size: p.Size, TotalItems: total, TotalPages: pages}
}
