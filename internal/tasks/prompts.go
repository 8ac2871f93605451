package tasks

import (
	"fmt"
	"strings"
)

// Model parameters shared by every completion.
const (
	MaxTokens   = 300
	Temperature = 0.0
)

// SimilarLimit caps the similar titles kept on a record.
const SimilarLimit = 5

// NoSearchResults replaces the snippet block when the web search returns nothing usable.
const NoSearchResults = "No useful search results found."

func availabilityQuery(title string) string {
	return fmt.Sprintf("Where can I watch %s streaming", title)
}

func availabilityPrompt(title, snippets string) string {
	return fmt.Sprintf(
		"Based on these web search snippets, where can I stream or watch the movie or tv show '%s'?\n\n%s\n\n"+
			"List only the streaming platforms or services. If unknown, say 'Not found'.",
		title, snippets,
	)
}

func genrePrompt(genre string) string {
	return fmt.Sprintf(
		"List 5 great movies in the genre or theme: '%s'. Return only the movie titles, comma-separated.",
		genre,
	)
}

func historyPrompt(titles []string) string {
	return fmt.Sprintf(
		"The user has saved these movies to their watchlist: %s. "+
			"Based on their taste, recommend 5 more movies. Return only the movie titles, comma-separated.",
		strings.Join(titles, ", "),
	)
}
