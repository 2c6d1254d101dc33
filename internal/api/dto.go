package api

import "github.com/starford/quire/internal/pageservice"

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = pageservice.PageDetail

// PageListItem is a lightweight item in a list response (aliased from the domain layer).
type PageListItem = pageservice.PageListItem

// SearchResult is a single search hit in the API response.
type SearchResult = pageservice.SearchResult

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
