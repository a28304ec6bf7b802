// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package command

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// A double-quoted string groups words; anything else up to whitespace is a
// word. An unbalanced quote is just part of a word.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[^\s]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// line is the grammar root: a command name followed by arguments.
type line struct {
	Name *token   `parser:"@@"`
	Args []*token `parser:"@@*"`
}

type token struct {
	Pos   lexer.Position
	Value string `parser:"@(String | Word)"`
}

var lineParser *participle.Parser[line]

func init() {
	var err error
	lineParser, err = participle.Build[line](
		participle.Lexer(lineLexer),
		participle.Unquote("String"),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to build command parser: %v", err))
	}
}

// ParsedCommand represents a parsed command input.
type ParsedCommand struct {
	Name string   // command name (first token)
	Args []string // remaining tokens, quotes removed
	Rest string   // raw text after the name (preserves internal whitespace)
	Raw  string   // original input

	offsets []int // byte offset of each argument in Raw
}

// Parse splits raw input into command name and arguments.
func Parse(input string) (*ParsedCommand, error) {
	if strings.TrimSpace(input) == "" {
		return nil, oops.Code(CodeEmptyInput).Errorf("no command provided")
	}

	parsed, err := lineParser.ParseString("", input)
	if err != nil {
		return nil, oops.Code(CodeInvalidSyntax).
			With("input", input).
			Wrapf(err, "parsing command")
	}

	cmd := &ParsedCommand{
		Name:    parsed.Name.Value,
		Args:    make([]string, 0, len(parsed.Args)),
		Raw:     input,
		offsets: make([]int, 0, len(parsed.Args)),
	}
	for _, a := range parsed.Args {
		cmd.Args = append(cmd.Args, a.Value)
		cmd.offsets = append(cmd.offsets, a.Pos.Offset)
	}
	cmd.Rest = cmd.restFrom(0)
	return cmd, nil
}

// Shift drops the command name and promotes the first argument to it. It is
// used to descend into a command group.
func (p *ParsedCommand) Shift() *ParsedCommand {
	if len(p.Args) == 0 {
		return &ParsedCommand{Raw: p.Raw}
	}
	next := &ParsedCommand{
		Name:    p.Args[0],
		Args:    p.Args[1:],
		Raw:     p.Raw,
		offsets: p.offsets[1:],
	}
	next.Rest = next.restFrom(0)
	return next
}

func (p *ParsedCommand) restFrom(i int) string {
	if i >= len(p.offsets) {
		return ""
	}
	return strings.TrimRight(p.Raw[p.offsets[i]:], " \t\r\n")
}
