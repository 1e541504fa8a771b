// Package prompt assembles the test-generation prompt from a ticket and
// retrieved knowledge.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/llm"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
	"github.com/ziadkadry99/auto-test/internal/ticket"
)

// CanonicalImport is the first line of every generated script.
const CanonicalImport = "import { test, expect } from '@playwright/test';"

// Options carries the generation settings rendered into the prompt.
type Options struct {
	Environment string
	BaseURL     string
	PageObject  bool
	// User references a declared test account. Only its role, username and
	// the name of its password variable reach the prompt.
	User *knowledge.User
}

const systemPolicy = `You are a senior QA automation engineer writing Playwright end-to-end tests in TypeScript.

Selector priority (use the first that applies):
1. data-testid attributes via page.getByTestId()
2. Accessible roles via page.getByRole() with a name
3. Form labels via page.getByLabel()
4. Unique visible text via page.getByText()
5. CSS selectors only as a last resort

Waiting rules:
- Prefer await expect(locator).toBeVisible() over page.waitForSelector().
- Call await page.waitForLoadState('networkidle') after every navigation.
- Never use page.waitForTimeout().`

// Build returns the complete prompt: policy, context, ticket, configuration
// and output contract, in that order.
func Build(t *ticket.Ticket, contexts []retrieval.Context, opts Options) string {
	return systemPolicy + "\n\n" + userPrompt(t, contexts, opts)
}

// Messages splits the prompt into a system message holding the policy and a
// user message holding everything else.
func Messages(t *ticket.Ticket, contexts []retrieval.Context, opts Options) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPolicy},
		{Role: llm.RoleUser, Content: userPrompt(t, contexts, opts)},
	}
}

func userPrompt(t *ticket.Ticket, contexts []retrieval.Context, opts Options) string {
	var sb strings.Builder
	writeContexts(&sb, contexts)
	writeTicket(&sb, t)
	writeConfiguration(&sb, opts)
	writeContract(&sb)
	return sb.String()
}

func writeContexts(sb *strings.Builder, contexts []retrieval.Context) {
	if len(contexts) == 0 {
		return
	}
	sb.WriteString("## Relevant knowledge\n\n")
	for _, c := range contexts {
		fmt.Fprintf(sb, "### [%s] %s (score %.2f)\n", c.Type, c.ID, c.Score)
		sb.WriteString(strings.TrimSpace(c.Content))
		sb.WriteString("\n\n")
	}
}

func writeTicket(sb *strings.Builder, t *ticket.Ticket) {
	sb.WriteString("## Ticket\n\n")
	fmt.Fprintf(sb, "Key: %s\n", t.Key)
	fmt.Fprintf(sb, "Summary: %s\n", t.Summary)
	if t.Description != "" {
		fmt.Fprintf(sb, "Description:\n%s\n", t.Description)
	}
	if len(t.AcceptanceCriteria) > 0 {
		sb.WriteString("Acceptance criteria:\n")
		for _, c := range t.AcceptanceCriteria {
			fmt.Fprintf(sb, "- %s\n", c)
		}
	}
	sb.WriteString("\n")
}

func writeConfiguration(sb *strings.Builder, opts Options) {
	sb.WriteString("## Configuration\n\n")
	if opts.Environment != "" {
		fmt.Fprintf(sb, "Environment: %s\n", opts.Environment)
	}
	if opts.BaseURL != "" {
		fmt.Fprintf(sb, "Base URL: %s\n", opts.BaseURL)
	}
	if opts.PageObject {
		sb.WriteString("Page object pattern: enabled. Wrap page interactions in a page object class defined in the same file.\n")
	} else {
		sb.WriteString("Page object pattern: disabled. Call the page API directly inside the test.\n")
	}
	if u := opts.User; u != nil {
		fmt.Fprintf(sb, "Credentials: log in as the %q user", u.Role)
		if u.Username != "" {
			fmt.Fprintf(sb, " (username %q)", u.Username)
		}
		if u.PasswordEnv != "" {
			fmt.Fprintf(sb, ", reading the password from process.env.%s", u.PasswordEnv)
		}
		sb.WriteString(". Never hard-code passwords.\n")
	}
	sb.WriteString("\n")
}

func writeContract(sb *strings.Builder) {
	sb.WriteString("## Output\n\n")
	sb.WriteString("Respond with code only: no prose and no markdown fences.\n")
	fmt.Fprintf(sb, "The first line must be: %s\n", CanonicalImport)
	sb.WriteString("Mark each logical step with a comment of the form // Step N: <description>.\n")
}
