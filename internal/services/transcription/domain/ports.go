package domain

import "context"

// LectureHeader is the slim lecture summary returned with transcript reads
// kept local so this package stays the bottom of the service import graph
type LectureHeader struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	StartTime string `json:"startTime"`
}

// LiveView is the bounded tail read for an in-progress lecture
type LiveView struct {
	LectureID string            `json:"lectureId"`
	Entries   []TranscriptEntry `json:"entries"`
}

// FullView is the complete transcript with resolved snippets
type FullView struct {
	Lecture    LectureHeader     `json:"lecture"`
	Transcript []TranscriptEntry `json:"transcript"`
	Snippets   []CodeSnippet     `json:"snippets"`
}

// ServicePort defines the transcription service contract
type ServicePort interface {
	// Process runs the ingestion pipeline for one transcript chunk
	Process(ctx context.Context, userID string, in ProcessInput) (ProcessOutput, error)

	// Live returns the last entries of a lecture the caller owns
	Live(ctx context.Context, userID, lectureID string) (LiveView, error)

	// Full returns the whole transcript, optionally filtered by a
	// case-insensitive substring over entry text
	Full(ctx context.Context, userID, lectureID, search string) (FullView, error)
}
