// Package tasks composes the metadata, web search and language model providers into the enrichment pipeline.
//
// # Core Operations
//
// [Pipeline] exposes four operations:
//
//  1. [Pipeline.LookupTitle] : metadata search (movies, then TV), details, similar titles and availability
//  2. [Pipeline.ResolveAvailability] : web search snippets summarized by the model into platform names
//  3. [Pipeline.RecommendByGenre] : five titles for a free-form genre or theme
//  4. [Pipeline.RecommendByHistory] : five titles based on the user's saved watchlist
//
// Every model reply passes through [ParseList], the single place replies are turned into lists.
//
// # Progress Reporting
//
// LookupTitle accepts an optional channel and emits a [ProgressUpdate] before each provider call.
// Sends use select with default so a slow or absent reader never blocks the lookup.
//
// # Failure Semantics
//
// Calls are sequential with no caching and no retries. The first provider error aborts the
// operation, is wrapped with [shared.ErrAPIRequest] and no partial record is returned.
package tasks
