package domain

import "fmt"

// Job is a structured job posting derived from a classified message.
type Job struct {
	ID           string
	Title        string
	Description  string
	Company      string
	Requirements string
}

// RecordID returns the type-prefixed identifier used in the match index.
func (j Job) RecordID() string { return "job_" + j.ID }

// DescriptiveText builds the labeled free text that gets embedded for
// skills-to-requirements matching.
func (j Job) DescriptiveText() string {
	return fmt.Sprintf(
		"Title: %s\nCompany: %s\nRequirements: %s\nDescription: %s",
		j.Title, j.Company, j.Requirements, j.Description,
	)
}

// Metadata returns the stored string fields for the job record.
func (j Job) Metadata() map[string]string {
	return map[string]string{
		"id":           j.ID,
		"title":        j.Title,
		"description":  j.Description,
		"company":      j.Company,
		"requirements": j.Requirements,
		"type":         "job",
	}
}

// Candidate is a structured candidate profile derived from a classified message.
type Candidate struct {
	ID         string
	Name       string
	Skills     string
	Experience string
	Background string
}

// RecordID returns the type-prefixed identifier used in the match index.
func (c Candidate) RecordID() string { return "candidate_" + c.ID }

// DescriptiveText builds the labeled free text that gets embedded for
// skills-to-requirements matching.
func (c Candidate) DescriptiveText() string {
	return fmt.Sprintf(
		"Name: %s\nSkills: %s\nExperience: %s\nBackground: %s",
		c.Name, c.Skills, c.Experience, c.Background,
	)
}

// Metadata returns the stored string fields for the candidate record.
func (c Candidate) Metadata() map[string]string {
	return map[string]string{
		"id":         c.ID,
		"name":       c.Name,
		"skills":     c.Skills,
		"experience": c.Experience,
		"background": c.Background,
		"type":       "candidate",
	}
}

// Match is a single query hit from a vector index, ordered by descending
// similarity score.
type Match struct {
	ID     string
	Score  float64
	Fields map[string]string
}
