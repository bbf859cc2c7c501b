package models

// ConflictsResponse is the envelope returned by the conflict listing
// endpoint.
type ConflictsResponse struct {
	Conflicts []Conflict `json:"conflicts"`
	Length    int        `json:"length"`
}
