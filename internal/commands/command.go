package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/leap/internal/model"
)

type Type string

const (
	TypeDream    Type = "dream"
	TypeCategory Type = "category"
	TypePace     Type = "pace"
	TypeFreeze   Type = "freeze"
	TypeUpgrade  Type = "upgrade"
	TypeRestore  Type = "restore"
	TypeReset    Type = "reset"
	TypeSettings Type = "settings"
	TypeHistory  Type = "history"
)

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

type DreamArgs struct {
	Title string
}

type CategoryArgs struct {
	Category model.Category
}

type PaceArgs struct {
	Pace model.Pace
}

// FreezeArgs and UpgradeArgs carry the receipt token from the platform
// checkout, when the user pasted one.
type FreezeArgs struct {
	Receipt string
}

type UpgradeArgs struct {
	Plan    string
	Receipt string
}

type ResetArgs struct {
	DeleteRemote bool
}

type SettingKey string

const (
	SettingNotifications SettingKey = "notifications"
	SettingHaptics       SettingKey = "haptics"
	SettingTheme         SettingKey = "theme"
)

// SettingsArgs sets either Enabled (toggles) or Theme.
type SettingsArgs struct {
	Key     SettingKey
	Enabled bool
	Theme   model.Theme
}

type Command struct {
	Type     Type
	Raw      string
	Dream    *DreamArgs
	Category *CategoryArgs
	Pace     *PaceArgs
	Freeze   *FreezeArgs
	Upgrade  *UpgradeArgs
	Reset    *ResetArgs
	Settings *SettingsArgs
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
	case TypeDream:
		return parseDream(input, args)
	case TypeCategory:
		return parseCategory(input, args)
	case TypePace:
		return parsePace(input, args)
	case TypeFreeze:
		return Command{Type: TypeFreeze, Raw: input, Freeze: &FreezeArgs{Receipt: strings.Join(args, "")}}, nil
	case TypeUpgrade:
		return parseUpgrade(input, args)
	case TypeRestore:
		return Command{Type: TypeRestore, Raw: input}, nil
	case TypeReset:
		return parseReset(input, args)
	case TypeSettings:
		return parseSettings(input, args)
	case TypeHistory:
		return Command{Type: TypeHistory, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseDream(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "dream requires a title"}
	}
	return Command{Type: TypeDream, Raw: raw, Dream: &DreamArgs{Title: title}}, nil
}

func parseCategory(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "category requires one of travel, worth, launch, growth"}
	}
	c, err := model.ParseCategory(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeCategory, Raw: raw, Category: &CategoryArgs{Category: c}}, nil
}

func parsePace(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "pace requires one of delusional, steady, flow"}
	}
	p, err := model.ParsePace(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypePace, Raw: raw, Pace: &PaceArgs{Pace: p}}, nil
}

func parseUpgrade(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "upgrade requires a plan (monthly or yearly) and an optional receipt"}
	}
	up := &UpgradeArgs{Plan: strings.ToLower(args[0])}
	if len(args) == 2 {
		up.Receipt = args[1]
	}
	return Command{Type: TypeUpgrade, Raw: raw, Upgrade: up}, nil
}

func parseReset(raw string, args []string) (Command, error) {
	switch {
	case len(args) == 0:
		return Command{Type: TypeReset, Raw: raw, Reset: &ResetArgs{}}, nil
	case len(args) == 1 && strings.EqualFold(args[0], "all"):
		return Command{Type: TypeReset, Raw: raw, Reset: &ResetArgs{DeleteRemote: true}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reset takes no argument or 'all'"}
	}
}

var errBadToggle = errors.New("expected on or off")

func parseToggle(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, errBadToggle
	}
}

func parseSettings(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "settings requires a key and a value"}
	}
	key := SettingKey(strings.ToLower(args[0]))
	switch key {
	case SettingNotifications, SettingHaptics:
		on, err := parseToggle(args[1])
		if err != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: %v", key, err)}
		}
		return Command{Type: TypeSettings, Raw: raw, Settings: &SettingsArgs{Key: key, Enabled: on}}, nil
	case SettingTheme:
		theme := model.Theme(strings.ToLower(args[1]))
		if !theme.IsValid() {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "theme must be light, dark or system"}
		}
		return Command{Type: TypeSettings, Raw: raw, Settings: &SettingsArgs{Key: key, Theme: theme}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown setting: %s", args[0])}
	}
}
