package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the intent of an incoming message.
type Category string

const (
	// CategoryJob marks job postings and hiring-related messages.
	CategoryJob Category = "job"
	// CategoryCandidate marks resumes and applications.
	CategoryCandidate Category = "candidate"
	// CategoryOther marks everything else.
	CategoryOther Category = "other"
)

// MessageType drives the framing of a generated reply.
type MessageType string

const (
	// TypeTechnical marks technical questions and development queries.
	TypeTechnical MessageType = "technical"
	// TypeJobRelated marks anything about jobs, hiring, or careers.
	TypeJobRelated MessageType = "job_related"
	// TypeGeneral marks general inquiries.
	TypeGeneral MessageType = "general"
)

// ParseVerdict parses a classification completion of the form
// "category:confidence". The category token is case-insensitive; confidence
// must be a float in [0, 1]. Any deviation returns ErrUnparsableVerdict;
// guessing here would feed low-quality records into the matcher.
func ParseVerdict(s string) (Category, float64, error) {
	catToken, confToken, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return "", 0, fmt.Errorf("missing delimiter in %q: %w", s, ErrUnparsableVerdict)
	}

	cat, err := parseCategory(catToken)
	if err != nil {
		return "", 0, err
	}

	conf, err := strconv.ParseFloat(strings.TrimSpace(confToken), 64)
	if err != nil {
		return "", 0, fmt.Errorf("confidence %q: %w", confToken, ErrUnparsableVerdict)
	}
	if conf < 0 || conf > 1 {
		return "", 0, fmt.Errorf("confidence %v out of range: %w", conf, ErrUnparsableVerdict)
	}

	return cat, conf, nil
}

func parseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryJob:
		return CategoryJob, nil
	case CategoryCandidate:
		return CategoryCandidate, nil
	case CategoryOther:
		return CategoryOther, nil
	}
	return "", fmt.Errorf("unknown category %q: %w", s, ErrUnparsableVerdict)
}

// ParseMessageType parses a type-detection completion ("TECHNICAL",
// "JOB_RELATED", "GENERAL") with the same parse-or-fail discipline.
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeTechnical:
		return TypeTechnical, nil
	case TypeJobRelated:
		return TypeJobRelated, nil
	case TypeGeneral:
		return TypeGeneral, nil
	}
	return "", fmt.Errorf("unknown message type %q: %w", s, ErrUnparsableVerdict)
}
