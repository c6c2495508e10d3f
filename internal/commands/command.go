package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeDone       Type = "done"
	TypeAt         Type = "at"
	TypeClear      Type = "clear"
	TypeFilter     Type = "filter"
	TypePrioritize Type = "prioritize"
	TypeSuggest    Type = "suggest"
)

// TargetSelected refers to the task under the cursor.
const TargetSelected = "selected"

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type TargetArgs struct {
	Target string
}

type AtArgs struct {
	Target string
	When   string
}

type FilterArgs struct {
	Category string
}

type Command struct {
	Type   Type
	Raw    string
	Done   *TargetArgs
	At     *AtArgs
	Clear  *TargetArgs
	Filter *FilterArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeDone:
		return Command{Type: TypeDone, Raw: input, Done: &TargetArgs{Target: target(args)}}, nil
	case TypeClear:
		return Command{Type: TypeClear, Raw: input, Clear: &TargetArgs{Target: target(args)}}, nil
	case TypeAt:
		return parseAt(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypePrioritize, TypeSuggest:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func target(args []string) string {
	if len(args) == 0 {
		return TargetSelected
	}
	return strings.ToLower(args[0])
}

// parseAt accepts "at <id> <when>" or "at <when>" for the selected task. The
// first argument is taken as a date when it starts with a digit.
func parseAt(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "at requires a datetime"}
	}
	tgt := TargetSelected
	rest := args
	if !startsWithDigit(args[0]) {
		tgt = strings.ToLower(args[0])
		rest = args[1:]
	}
	when := strings.TrimSpace(strings.Join(rest, " "))
	if when == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "at requires a datetime"}
	}
	return Command{Type: TypeAt, Raw: raw, At: &AtArgs{Target: tgt, When: when}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires one category"}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Category: strings.ToLower(args[0])}}, nil
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
