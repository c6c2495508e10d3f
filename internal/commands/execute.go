package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Done       func(TargetArgs) (Result, error)
	At         func(AtArgs) (Result, error)
	Clear      func(TargetArgs) (Result, error)
	Filter     func(FilterArgs) (Result, error)
	Prioritize func() (Result, error)
	Suggest    func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeAt:
		if handlers.At == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.At(*cmd.At)
	case TypeClear:
		if handlers.Clear == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Clear(*cmd.Clear)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Filter(*cmd.Filter)
	case TypePrioritize:
		if handlers.Prioritize == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Prioritize()
	case TypeSuggest:
		if handlers.Suggest == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Suggest()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
