// Package models defines the domain entities shared by the stores, the enrichment pipeline and the surfaces.
//
// Persistent entities:
//   - [User] : an account keyed by username with a hex SHA-256 password digest
//   - [WatchlistEntry] : a saved title, unique per user, never mutated after insert
//
// Transient values:
//   - [EnrichedRecord] : the aggregate of metadata, similar titles and availability for one title
//   - [AddResult] : outcome of a watchlist insert
//
// Provider DTOs, returned by the clients in package services:
//   - [TitleMatch], [TitleDetails] : metadata search hit and its details
//   - [SearchResult] : one organic web search result
//   - [CompletionRequest] : a single-turn language model prompt
package models
