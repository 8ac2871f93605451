// Package session holds per-user interaction state and routes user actions to the stores and the enrichment pipeline.
//
// A [Session] is created by [Controller.Login] and passed explicitly to every action. It holds
// at most one live view: the last search result, genre recommendations or personal
// recommendations. Populating one view discards the other two; [Controller.Logout] clears
// everything. Each session serializes its own actions with a mutex.
//
// [Registry] maps session IDs to sessions for surfaces that outlive a single action, such as
// the HTTP API.
package session
