// Package domain holds lecture session types and their validation rules
package domain

import (
	"fmt"
	"strings"
	"time"

	tdom "codespeak/internal/services/transcription/domain"
)

// MaxTitleLen caps lecture titles
const MaxTitleLen = 200

// DefaultInstructor is used when a lecture is started without one
const DefaultInstructor = "Unknown"

// Subjects is the closed set of lecture subjects
var Subjects = []string{"Data Structures", "Algorithms", "Web Dev", "Machine Learning", "Other"}

// IsSubject reports whether s is a valid subject
func IsSubject(s string) bool {
	for _, v := range Subjects {
		if s == v {
			return true
		}
	}
	return false
}

// Lecture is one recorded session
type Lecture struct {
	ID         string
	UserID     string
	Title      string
	Subject    string
	Instructor string
	Tags       []string
	Summary    string
	IsPublic   bool
	StartTime  time.Time
	EndTime    *time.Time
	Duration   int // whole seconds, set when the lecture ends
}

// StartInput is the request body for starting a lecture
type StartInput struct {
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	Instructor string `json:"instructor"`
}

// Validate returns every violated rule, empty when the input is clean
func (in StartInput) Validate() []string {
	var details []string
	if strings.TrimSpace(in.Title) == "" {
		details = append(details, "Title is required")
	} else if len(in.Title) > MaxTitleLen {
		details = append(details, fmt.Sprintf("Title must be %d characters or less", MaxTitleLen))
	}
	if strings.TrimSpace(in.Subject) == "" {
		details = append(details, "Subject is required")
	} else if !IsSubject(in.Subject) {
		details = append(details, "Subject must be one of: "+strings.Join(Subjects, ", "))
	}
	return details
}

// View is the lecture JSON shape
type View struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Subject    string   `json:"subject"`
	Instructor string   `json:"instructor"`
	Tags       []string `json:"tags"`
	Summary    string   `json:"summary,omitempty"`
	IsPublic   bool     `json:"isPublic"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime,omitempty"`
	Duration   int      `json:"duration"`
}

// ViewOf maps a Lecture to its JSON shape
func ViewOf(l Lecture) View {
	v := View{
		ID:         l.ID,
		Title:      l.Title,
		Subject:    l.Subject,
		Instructor: l.Instructor,
		Tags:       l.Tags,
		Summary:    l.Summary,
		IsPublic:   l.IsPublic,
		StartTime:  l.StartTime.UTC().Format(time.RFC3339),
		Duration:   l.Duration,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if l.EndTime != nil {
		v.EndTime = l.EndTime.UTC().Format(time.RFC3339)
	}
	return v
}

// Details is a lecture with its resolved snippets
type Details struct {
	View
	Snippets []tdom.CodeSnippet `json:"codeSnippets"`
}

// EndedLecture is the summary returned when a lecture ends
type EndedLecture struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

// EndOutput is the response for ending a lecture
type EndOutput struct {
	Message string       `json:"message"`
	Lecture EndedLecture `json:"lecture"`
}

// StartOutput is the response for starting a lecture
type StartOutput struct {
	LectureID string `json:"lectureId"`
	Message   string `json:"message"`
}

// RecorrectOutput reports a batch re-correction pass
type RecorrectOutput struct {
	Message   string `json:"message"`
	Snippets  int    `json:"snippets"`
	Corrected int    `json:"corrected"`
}
