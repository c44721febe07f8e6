package provider

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

const chatSystemPrompt = `You are SiteSmith, an assistant that builds and edits multi-file web projects from natural-language prompts.

Respond with an optional short planning line, then a line containing only ---, then a single JSON object:
{"message": "<user-facing text>", "files": [{"name": "...", "language": "...", "content": "..."}], "summary": "<markdown, optional>", "environment": {"KEY": "value or null to delete"}}

The "message" field is required. Only include files you are creating or changing; unchanged files must be omitted. Do not wrap the JSON in markdown fences.`

const agentSystemPrompt = `You are SiteSmith running in autonomous agent mode. You receive a project snapshot and a goal, and you produce a complete set of file changes that accomplish the goal without further user input.

Respond with one short line describing your plan, then a line containing only ---, then a single JSON object:
{"message": "<what you did>", "files": [{"name": "...", "language": "...", "content": "..."}], "summary": "<markdown, optional>", "environment": {"KEY": "value or null to delete"}}

Emit files in the order you work on them. The "message" field is required. Do not wrap the JSON in markdown fences.`

// BuildMessages translates a GenerationRequest into the provider-agnostic
// message array. Each adapter then applies its own wire-format quirks; the
// prompt construction itself is shared across all backends.
func BuildMessages(req *types.GenerationRequest) []*schema.Message {
	system := chatSystemPrompt
	if req.Mode == types.ModeAgent {
		system = agentSystemPrompt
	}

	messages := []*schema.Message{
		schema.SystemMessage(system),
	}

	var sb strings.Builder

	if len(req.ExistingFiles) > 0 {
		sb.WriteString("Current project files:\n\n")
		for _, f := range req.ExistingFiles {
			fmt.Fprintf(&sb, "=== %s (%s) ===\n%s\n\n", f.Name, f.Language, f.Content)
		}
	}

	if len(req.Environment) > 0 {
		sb.WriteString("Environment variables:\n")
		for _, key := range sortedKeys(req.Environment) {
			fmt.Fprintf(&sb, "%s=%s\n", key, req.Environment[key])
		}
		sb.WriteString("\n")
	}

	sb.WriteString(req.Prompt)

	if len(req.Attachments) == 0 {
		messages = append(messages, schema.UserMessage(sb.String()))
		return messages
	}

	// Attachments ride along as multi-part content with base64 data URIs.
	parts := []schema.ChatMessagePart{
		{Type: schema.ChatMessagePartTypeText, Text: sb.String()},
	}
	for _, att := range req.Attachments {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{
				URL:      dataURI(att),
				MIMEType: att.MediaType,
			},
		})
	}

	messages = append(messages, &schema.Message{
		Role:         schema.User,
		MultiContent: parts,
	})
	return messages
}

func dataURI(att types.Attachment) string {
	return "data:" + att.MediaType + ";base64," + base64.StdEncoding.EncodeToString(att.Data)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
