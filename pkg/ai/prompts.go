package ai

import (
	"fmt"
	"strings"
	"text/template"

	"goalspace-backend/pkg/models"
)

// One template per use case. The mentor's persona is interpolated into
// every template so generated content stays in-character.

const personaPreamble = `You are {{.MentorName}}, a mentor guiding a learner through the space "{{.Title}}".
{{if .Personality}}Your personality: {{.Personality}}.{{end}}
{{if .Expertise}}Your areas of expertise: {{.Expertise}}.{{end}}
Stay in character in everything you write.

`

var promptTemplates = map[string]string{
	models.UseCasePlan: personaPreamble + `Create a detailed, step-by-step learning plan for this space.

Space: {{.Title}} ({{.Category}})
Description: {{.Description}}
{{if .Objectives}}Objectives:
{{.Objectives}}{{end}}
{{if .Prerequisites}}Prerequisites:
{{.Prerequisites}}{{end}}

Lay out concrete milestones in order, with a short rationale for each.`,

	models.UseCaseResearch: personaPreamble + `Write a research summary of the most useful resources, concepts and common pitfalls for this space.

Space: {{.Title}} ({{.Category}})
Description: {{.Description}}
{{if .Objectives}}Objectives:
{{.Objectives}}{{end}}

Cover the key concepts first, then recommended resources, then pitfalls to avoid.`,

	models.UseCaseMindmap: personaPreamble + `Produce a mind map of this space as an indented outline: one root node, branches for the major themes, leaves for concrete topics.

Space: {{.Title}} ({{.Category}})
Description: {{.Description}}
{{if .Objectives}}Objectives:
{{.Objectives}}{{end}}
{{if .Prerequisites}}Prerequisites:
{{.Prerequisites}}{{end}}`,

	models.UseCasePodcast: personaPreamble + `Write a short, engaging podcast episode script introducing this space to the learner. Use a conversational tone, as if speaking directly to them.

Space: {{.Title}} ({{.Category}})
Description: {{.Description}}
{{if .Objectives}}What the episode should cover:
{{.Objectives}}{{end}}`,

	models.UseCaseChat: personaPreamble + `You are chatting with the learner about this space.

Space: {{.Title}} ({{.Category}})
Description: {{.Description}}
{{if .History}}Conversation so far:
{{.History}}
{{end}}Learner: {{.Message}}

Reply as {{.MentorName}}.`,
}

var parsedTemplates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(promptTemplates))
	for useCase, text := range promptTemplates {
		out[useCase] = template.Must(template.New(useCase).Parse(text))
	}
	return out
}()

type promptInput struct {
	MentorName    string
	Personality   string
	Expertise     string
	Title         string
	Category      string
	Description   string
	Objectives    string
	Prerequisites string
	Message       string
	History       string
}

func bulleted(items []string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

// RenderPrompt fills the use-case template from the space snapshot.
func RenderPrompt(req models.GenerationRequest) (string, error) {
	tmpl, ok := parsedTemplates[req.UseCase]
	if !ok {
		return "", fmt.Errorf("unknown use case: %s", req.UseCase)
	}

	mentorName := req.Space.Mentor.Name
	if mentorName == "" {
		mentorName = "a helpful mentor"
	}

	var history strings.Builder
	for _, msg := range req.History {
		speaker := "Learner"
		if msg.Role == models.RoleAssistant {
			speaker = mentorName
		}
		fmt.Fprintf(&history, "%s: %s\n", speaker, msg.Content)
	}

	input := promptInput{
		MentorName:    mentorName,
		Personality:   req.Space.Mentor.Personality,
		Expertise:     strings.Join(req.Space.Mentor.Expertise, ", "),
		Title:         req.Space.Title,
		Category:      req.Space.Category,
		Description:   req.Space.Description,
		Objectives:    bulleted(req.Space.Objectives),
		Prerequisites: bulleted(req.Space.Prerequisites),
		Message:       req.Message,
		History:       strings.TrimRight(history.String(), "\n"),
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, input); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", req.UseCase, err)
	}
	return buf.String(), nil
}

// SystemPrompt returns the mentor's system prompt, or a generic one
// when the space carries none.
func SystemPrompt(space models.Space) string {
	if space.Mentor.SystemPrompt != "" {
		return space.Mentor.SystemPrompt
	}
	if space.Mentor.Name != "" {
		return fmt.Sprintf("You are %s, a mentor helping a learner master %q. Stay in character.",
			space.Mentor.Name, space.Title)
	}
	return "You are a helpful mentor guiding a learner."
}
