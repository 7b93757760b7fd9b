package bot

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

// requirementsPreview caps the requirements excerpt in job listings.
const requirementsPreview = 200

// jobFromMessage derives a job posting from a classified message. Company is
// not extracted from free text yet, so it carries a placeholder.
func jobFromMessage(msg domain.Message) domain.Job {
	return domain.Job{
		ID:           msg.MessageID,
		Title:        msg.Subject,
		Description:  msg.Content,
		Company:      "From Email",
		Requirements: msg.Content,
	}
}

// candidateFromMessage derives a candidate profile from a classified message.
func candidateFromMessage(msg domain.Message) domain.Candidate {
	return domain.Candidate{
		ID:         msg.MessageID,
		Name:       msg.Sender,
		Skills:     msg.Content,
		Experience: "From Email",
		Background: msg.Content,
	}
}

// candidateListReply renders the reply to a job posting: a numbered list of
// matching candidates, or a keep-in-mind note when there are none.
func candidateListReply(candidates []domain.Match) string {
	if len(candidates) == 0 {
		return "Thank you for your job posting. We'll keep your requirements in mind and notify you when we find matching candidates."
	}

	var sb strings.Builder
	sb.WriteString("Thank you for your job posting. Here are our top matching candidates:\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c.Fields["name"])
		fmt.Fprintf(&sb, "   Skills: %s\n", c.Fields["skills"])
		fmt.Fprintf(&sb, "   Experience: %s\n\n", c.Fields["experience"])
	}
	return sb.String()
}

// jobListReply renders the reply to a candidate profile: a numbered list of
// matching jobs with truncated requirements, or a keep-on-file note.
func jobListReply(jobs []domain.Match) string {
	if len(jobs) == 0 {
		return "Thank you for your profile. We'll keep your details and notify you when relevant positions become available."
	}

	var sb strings.Builder
	sb.WriteString("Thank you for your interest. Here are some matching job opportunities:\n\n")
	for i, j := range jobs {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, j.Fields["title"])
		fmt.Fprintf(&sb, "   Company: %s\n", j.Fields["company"])
		fmt.Fprintf(&sb, "   Requirements: %s...\n\n", truncate(j.Fields["requirements"], requirementsPreview))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
