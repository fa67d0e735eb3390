package parser

import (
	"fmt"
	"strings"

	"github.com/nhzaci/ip/pkg/model"
)

const (
	CmdTodo     = "todo"
	CmdDeadline = "deadline"
	CmdEvent    = "event"
	CmdList     = "list"
	CmdDone     = "done"
	CmdDelete   = "delete"
	CmdUpdate   = "update"
	CmdFind     = "find"
	CmdBye      = "bye"
)

// Reserved keywords separating a description from its time.
const (
	KeywordBy = "/by"
	KeywordAt = "/at"
)

var commands = map[string]bool{
	CmdTodo: true, CmdDeadline: true, CmdEvent: true, CmdList: true,
	CmdDone: true, CmdDelete: true, CmdUpdate: true, CmdFind: true, CmdBye: true,
}

// Command is a recognised command name and its unparsed arguments.
type Command struct {
	Name string
	Args []string
}

// Tokenize splits a raw command line on whitespace.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// Parse maps tokens onto a Command. Argument tokens are returned verbatim
// for the owning operation to validate.
func Parse(tokens []string) (Command, error) {
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("%w: please enter a command", model.ErrCommandNotFound)
	}
	name := tokens[0]
	if !commands[name] {
		return Command{}, fmt.Errorf("%w: I'm sorry, but I don't know what %q means", model.ErrCommandNotFound, name)
	}
	args := make([]string, len(tokens)-1)
	copy(args, tokens[1:])
	return Command{Name: name, Args: args}, nil
}

// FlagOf maps "-m" and "-t" to their update flags. Any other token means no flag.
func FlagOf(token string) model.Flag {
	switch token {
	case "-m":
		return model.FlagMessage
	case "-t":
		return model.FlagTime
	default:
		return model.FlagNone
	}
}

// CountFlags counts update flag tokens anywhere in args.
func CountFlags(args []string) int {
	n := 0
	for _, arg := range args {
		if FlagOf(arg) != model.FlagNone {
			n++
		}
	}
	return n
}

// Segment splits tokens at the first occurrence of any keyword. The keyword
// itself is the first element of the time segment.
func Segment(tokens []string, keywords ...string) (message, when []string) {
	for _, tok := range tokens {
		if len(when) == 0 && !isKeyword(tok, keywords) {
			message = append(message, tok)
			continue
		}
		when = append(when, tok)
	}
	return message, when
}

func isKeyword(tok string, keywords []string) bool {
	for _, k := range keywords {
		if tok == k {
			return true
		}
	}
	return false
}

// Join joins tokens with single spaces.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
