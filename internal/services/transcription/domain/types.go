// Package domain holds the transcript and snippet types shared across the service
package domain

import (
	"fmt"
	"strings"

	"codespeak/internal/core/ident"
)

// MaxChunkLen is the longest transcript chunk accepted for processing
const MaxChunkLen = 5000

// MaxSnippetLen caps stored snippet code
const MaxSnippetLen = 10000

// SnippetThreshold is the classifier confidence a chunk must exceed
// (strictly) before a snippet is extracted
const SnippetThreshold = 0.7

// SnippetLanguages is the closed set of languages a snippet may carry
var SnippetLanguages = []string{"javascript", "python", "java", "cpp", "c", "sql", "other"}

// NormalizeLanguage maps a classifier language onto the snippet enum,
// folding anything unrecognized to other
func NormalizeLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	for _, known := range SnippetLanguages {
		if l == known {
			return l
		}
	}
	return "other"
}

// TranscriptEntry is one appended transcript line
// immutable once written; Seq is assigned by the storage layer and
// defines the canonical transcript order
type TranscriptEntry struct {
	Seq          int64   `json:"-"`
	LectureID    string  `json:"-"`
	Timestamp    float64 `json:"timestamp"`
	Text         string  `json:"text"`
	IsCode       bool    `json:"isCode"`
	CodeLanguage string  `json:"codeLanguage,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// CodeSnippet is an extracted, persisted code artifact
type CodeSnippet struct {
	ID                 string  `json:"id"`
	LectureID          string  `json:"-"`
	Code               string  `json:"code"`
	Language           string  `json:"language"`
	Timestamp          float64 `json:"timestamp"`
	OriginalTranscript string  `json:"originalTranscript"`
	Explanation        string  `json:"explanation,omitempty"`
	IsCorrected        bool    `json:"isCorrected"`
	Confidence         float64 `json:"confidence"`
}

// ProcessInput is the ingestion request body
// validation is domain level so every violation can be reported at once
type ProcessInput struct {
	LectureID string  `json:"lectureId"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Validate returns every violated rule, empty when the input is clean
func (in ProcessInput) Validate() []string {
	var details []string
	if !ident.IsID(in.LectureID) {
		details = append(details, "Invalid lecture ID")
	}
	if strings.TrimSpace(in.Text) == "" {
		details = append(details, "Text is required and must be a non-empty string")
	} else if len(in.Text) > MaxChunkLen {
		details = append(details, fmt.Sprintf("Text must be %d characters or less", MaxChunkLen))
	}
	if in.Timestamp < 0 {
		details = append(details, "Timestamp must be a non-negative number")
	}
	return details
}

// ProcessOutput is the ingestion response
type ProcessOutput struct {
	Success       bool    `json:"success"`
	IsCode        bool    `json:"isCode"`
	CorrectedText string  `json:"correctedText"`
	Language      string  `json:"language"`
	Confidence    float64 `json:"confidence"`
}
