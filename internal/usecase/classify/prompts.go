package classify

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mailbot/internal/domain"
)

const classifyPrompt = `Analyze the following email and classify it into one of these categories:
1. JOB - Job postings, job requirements, or hiring-related content
2. CANDIDATE - Resumes, job applications, or candidate-related content
3. OTHER - Any other type of email

Return only the classification and confidence score (0-1) in format: category:confidence

Subject: %s
Content: %s`

const detectTypePrompt = `Analyze this email and determine its type. Choose one:
1. TECHNICAL - Technical questions, programming issues, development queries
2. JOB_RELATED - Anything about jobs, hiring, careers
3. GENERAL - General inquiries, other topics

Return only the type (e.g., "TECHNICAL")

Subject: %s
Content: %s`

const replyPrompt = `Analyze this email and generate an appropriate response.
Consider the context from similar previous emails when crafting the response.

New Email:
Subject: %s
Content: %s

Similar Previous Emails:
%s

Context:
%s

Instructions:
1. If this is a new topic, provide a relevant response based on the email content
2. If this is part of an existing thread, ensure the response maintains context
3. Keep the tone professional and helpful
4. If specific action items are mentioned, acknowledge them
5. For technical queries, provide specific technical guidance
6. For job-related queries, provide relevant career/job information
7. Include any relevant links or resources`

// framing steers the reply toward the detected message type.
var framing = map[domain.MessageType]string{
	domain.TypeTechnical: `This is a technical question.
Focus on providing specific technical guidance and solutions.
If similar technical questions exist in the context, build upon those answers.
Include relevant technical resources or documentation if applicable.`,
	domain.TypeJobRelated: `This email is related to jobs/careers.
Focus on providing relevant job-related information and next steps.
If similar job-related threads exist, maintain consistency in responses.`,
	domain.TypeGeneral: `This is a general inquiry.
Provide a helpful and informative response.
Maintain context from any similar previous conversations.`,
}

// formatSimilar renders retrieved context for the reply prompt, dropping
// entries whose content was already listed.
func formatSimilar(similar []map[string]string) string {
	seen := make(map[string]struct{}, len(similar))
	var sb strings.Builder
	n := 0

	for _, fields := range similar {
		content := fields[domain.FieldContent]
		if _, dup := seen[content]; dup {
			continue
		}
		seen[content] = struct{}{}
		n++
		fmt.Fprintf(&sb, "Email %d:\nSubject: %s\nContent: %s\n\n",
			n, fields[domain.FieldSubject], content)
	}

	if n == 0 {
		return "(none)"
	}
	return strings.TrimRight(sb.String(), "\n")
}
