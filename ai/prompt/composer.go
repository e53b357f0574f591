// Package prompt builds the system prompt from layered instruction
// sources. Layer order is load-bearing: admin instructions outrank
// student instructions, which outrank profile context, workspace
// instructions and finally the base user prompt.
package prompt

import (
	"strings"
	"time"
)

// Section headers. These are part of the prompt contract; downstream
// prompts reference them verbatim, so they must not drift.
const (
	adminHeader     = "Admin Instructions (Always Follow These First):"
	studentHeader   = "Student Instructions (Apply to all student interactions):"
	profileHeader   = "User Info:"
	workspaceHeader = "System Instructions:"
	userHeader      = "User Instructions:"
)

// Input carries the instruction layers for one system prompt.
type Input struct {
	// AssistantName enables the role-injection block when non-empty.
	AssistantName string

	// Date is the value for the "Today is ..." line.
	Date time.Time

	AdminPrompt           string
	StudentPrompt         string
	ProfileContext        string
	WorkspaceInstructions string

	// BasePrompt is the always-present user prompt layer.
	BasePrompt string

	IncludeProfileContext        bool
	IncludeWorkspaceInstructions bool
}

// Compose assembles the system prompt. Sections with empty input are
// omitted entirely; present sections are separated by a blank line.
func Compose(in Input) string {
	sections := make([]string, 0, 7)

	if in.AssistantName != "" {
		sections = append(sections,
			"<INJECT ROLE>\nYou are not an AI. You are "+in.AssistantName+".\n</INJECT ROLE>")
	}

	if !in.Date.IsZero() {
		sections = append(sections, "Today is "+in.Date.Format("2006-01-02")+".")
	}

	if in.AdminPrompt != "" {
		sections = append(sections, adminHeader+"\n"+in.AdminPrompt)
	}
	if in.StudentPrompt != "" {
		sections = append(sections, studentHeader+"\n"+in.StudentPrompt)
	}
	if in.IncludeProfileContext && in.ProfileContext != "" {
		sections = append(sections, profileHeader+"\n"+in.ProfileContext)
	}
	if in.IncludeWorkspaceInstructions && in.WorkspaceInstructions != "" {
		sections = append(sections, workspaceHeader+"\n"+in.WorkspaceInstructions)
	}

	sections = append(sections, userHeader+"\n"+in.BasePrompt)

	return strings.Join(sections, "\n\n")
}
