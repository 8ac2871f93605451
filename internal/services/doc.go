// Package services implements the HTTP clients for the three external providers used by the enrichment pipeline.
//
// # Interfaces
//
// Each provider is consumed through a narrow interface so the pipeline can be tested with doubles:
//   - [MetadataProvider] : title search, details and similar titles
//   - [WebSearcher] : organic web search results
//   - [LanguageModel] : single-turn text completion
//
// # TMDB
//
// [TMDBService] talks to the TMDB v3 API. With an access_token configured, requests carry a
// bearer token through an [oauth2.StaticTokenSource] client; otherwise the v3 api_key is sent
// as a query parameter.
//
// # SerpAPI
//
// [SerpAPIService] runs Google searches through SerpAPI and returns organic results.
//
// # Anthropic
//
// [AnthropicService] calls the Messages API with a single user turn and returns the text of
// the first content block.
//
// # Error Handling
//
// Every transport failure, non-2xx status or undecodable body is wrapped with
// [shared.ErrAPIRequest]. Missing keys fail construction with [shared.ErrMissingCredentials].
// Clients never retry; a [rate.Limiter] spaces outbound requests.
package services
