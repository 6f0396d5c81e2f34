// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a Code segment prepared for display.
type CodeBlock struct {
	// Language is the info string, if the first line carried one.
	Language string
	// Code is the body without the info string.
	Code  string
	Width int
}

// NewCodeBlock prepares a code segment. A first line that is a single word
// naming a known language (```go) is shown as a badge rather than code.
func NewCodeBlock(text string, width int) CodeBlock {
	language, body := splitInfoString(text)
	return CodeBlock{Language: language, Code: body, Width: width}
}

// Render renders the code block with syntax highlighting and line numbers.
func (c CodeBlock) Render(theme *styles.Theme) string {
	language := c.Language
	if language == "" {
		language = detectLanguage(c.Code)
	}

	highlighted := highlightCode(c.Code, language, theme)
	lines := strings.Split(highlighted, "\n")

	rendered := make([]string, 0, len(lines))
	for i, line := range lines {
		rendered = append(rendered, theme.CodeLineNum.Render(strconv.Itoa(i+1))+line)
	}
	content := strings.Join(rendered, "\n")

	if c.Language != "" {
		content = theme.CodeLangBadge.Render(c.Language) + "\n" + content
	}

	maxWidth := c.Width - 2
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(content)
}

// splitInfoString separates a leading language tag from the code body.
func splitInfoString(text string) (language, body string) {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return "", text
	}
	tag := strings.TrimSpace(first)
	if tag == "" || strings.ContainsAny(tag, " \t(){};=") || lexers.Get(tag) == nil {
		return "", text
	}
	return tag, rest
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting in the theme's chroma style.
// It returns code unchanged if anything fails.
func highlightCode(code, language string, theme *styles.Theme) string {
	if code == "" {
		return code
	}

	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(theme.ChromaStyle())
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatterName := "terminal256"
	switch theme.ColorProfile {
	case termenv.TrueColor:
		formatterName = "terminal16m"
	case termenv.Ascii:
		return code
	}
	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// detectLanguage guesses the language of code, or returns "".
func detectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
