package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Dream    func(DreamArgs) (Result, error)
	Category func(CategoryArgs) (Result, error)
	Pace     func(PaceArgs) (Result, error)
	Freeze   func(FreezeArgs) (Result, error)
	Upgrade  func(UpgradeArgs) (Result, error)
	Restore  func() (Result, error)
	Reset    func(ResetArgs) (Result, error)
	Settings func(SettingsArgs) (Result, error)
	History  func() (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDream:
		if handlers.Dream == nil {
			return Result{}, missing("dream")
		}
		return handlers.Dream(*cmd.Dream)
	case TypeCategory:
		if handlers.Category == nil {
			return Result{}, missing("category")
		}
		return handlers.Category(*cmd.Category)
	case TypePace:
		if handlers.Pace == nil {
			return Result{}, missing("pace")
		}
		return handlers.Pace(*cmd.Pace)
	case TypeFreeze:
		if handlers.Freeze == nil {
			return Result{}, missing("freeze")
		}
		return handlers.Freeze(*cmd.Freeze)
	case TypeUpgrade:
		if handlers.Upgrade == nil {
			return Result{}, missing("upgrade")
		}
		return handlers.Upgrade(*cmd.Upgrade)
	case TypeRestore:
		if handlers.Restore == nil {
			return Result{}, missing("restore")
		}
		return handlers.Restore()
	case TypeReset:
		if handlers.Reset == nil {
			return Result{}, missing("reset")
		}
		return handlers.Reset(*cmd.Reset)
	case TypeSettings:
		if handlers.Settings == nil {
			return Result{}, missing("settings")
		}
		return handlers.Settings(*cmd.Settings)
	case TypeHistory:
		if handlers.History == nil {
			return Result{}, missing("history")
		}
		return handlers.History()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
