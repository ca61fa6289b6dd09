package rooms

import "strings"

type SortOrder string

const (
	SortByPriceAsc  SortOrder = "price_asc"
	SortByPriceDesc SortOrder = "price_desc"
	SortByRating    SortOrder = "rating"

	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	OnlyAvailable bool
	Type          RoomType
	MinCapacity   int
	MinRating     float64
	MaxRateAmount int64
	Sort          SortOrder
	Limit         int
	Offset        int
}

type SearchResult struct {
	Items []*Room
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	n := p
	n.Type = RoomType(strings.ToLower(strings.TrimSpace(string(n.Type))))
	if n.MinCapacity < 0 {
		n.MinCapacity = 0
	}
	if n.MinRating < 0 {
		n.MinRating = 0
	}
	if n.MaxRateAmount < 0 {
		n.MaxRateAmount = 0
	}
	if n.Limit <= 0 {
		n.Limit = defaultSearchLimit
	}
	if n.Limit > maxSearchLimit {
		n.Limit = maxSearchLimit
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	switch n.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByRating:
	default:
		n.Sort = SortByPriceAsc
	}
	return n
}

// Matches reports whether room satisfies the (normalized) filters.
func (p SearchParams) Matches(room *Room) bool {
	if room == nil {
		return false
	}
	if p.OnlyAvailable && !room.Available {
		return false
	}
	if p.Type != "" && room.Type != p.Type {
		return false
	}
	if p.MinCapacity > 0 && room.Capacity < p.MinCapacity {
		return false
	}
	if p.MinRating > 0 && room.Rating < p.MinRating {
		return false
	}
	if p.MaxRateAmount > 0 && room.NightlyRate.Amount > p.MaxRateAmount {
		return false
	}
	return true
}
