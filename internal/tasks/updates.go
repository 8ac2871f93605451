package tasks

import "fmt"

// ProgressUpdate represents a progress event during a title lookup.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Lookup phase
	Step    int    // Current step number
	Total   int    // Total steps in the lookup
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Lookup phase enumeration
type Phase int

const (
	SearchMetadata Phase = iota
	FetchDetails
	FetchSimilar
	SearchWeb
	AskModel
)

// lookupSteps is the number of provider calls a successful lookup makes.
const lookupSteps = 5

func (p Phase) String() string {
	switch p {
	case SearchMetadata:
		return "search_metadata"
	case FetchDetails:
		return "fetch_details"
	case FetchSimilar:
		return "fetch_similar"
	case SearchWeb:
		return "search_web"
	case AskModel:
		return "ask_model"
	default:
		return ""
	}
}

func searchMetadataUpdate(query, media string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchMetadata,
		Step:    1,
		Total:   lookupSteps,
		Message: fmt.Sprintf("Searching %s titles for %q...", media, query),
	}
}

func fetchDetailsUpdate(title string, data any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    2,
		Total:   lookupSteps,
		Message: fmt.Sprintf("Fetching details for %s...", title),
		Data:    data,
	}
}

func fetchSimilarUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilar,
		Step:    3,
		Total:   lookupSteps,
		Message: fmt.Sprintf("Finding titles similar to %s...", title),
	}
}

func searchWebUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchWeb,
		Step:    4,
		Total:   lookupSteps,
		Message: fmt.Sprintf("Searching the web: %s", query),
	}
}

func askModelUpdate(snippets int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AskModel,
		Step:    5,
		Total:   lookupSteps,
		Message: fmt.Sprintf("Asking the model about availability (%d snippets)...", snippets),
	}
}
