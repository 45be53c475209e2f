package ui

import (
	"errors"
	"time"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// Level is a toast severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Toast lifetimes.
const (
	ToastInfoDuration  = 3 * time.Second
	ToastErrorDuration = 5 * time.Second
)

// Category is the error taxonomy shown to the user.
type Category int

const (
	CategoryProvider Category = iota + 1 // no wallet provider
	CategoryRejected                     // access rejected or empty
	CategoryInput                        // malformed user input
	CategoryPrerequisite                 // called before setup finished
	CategoryLibrary                      // RPC, revert, encoding
)

var categoryTitles = map[Category]string{
	CategoryProvider:     "Wallet unavailable",
	CategoryRejected:     "Connection rejected",
	CategoryInput:        "Invalid input",
	CategoryPrerequisite: "Not ready",
	CategoryLibrary:      "Call failed",
}

// Title returns the user-facing title for c.
func (c Category) Title() string { return categoryTitles[c] }

// Toast is a transient notification.
type Toast struct {
	Level   Level
	Title   string
	Message string
	Expires time.Time
}

// NewToast builds a toast that expires after the level's lifetime.
func NewToast(level Level, title, msg string, now time.Time) Toast {
	d := ToastInfoDuration
	if level == LevelError {
		d = ToastErrorDuration
	}
	return Toast{Level: level, Title: title, Message: msg, Expires: now.Add(d)}
}

// Expired reports whether the toast should be dismissed at now.
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// Render styles the toast by level.
func (t Toast) Render() string {
	style, icon := StyleInfo, "ℹ"
	switch t.Level {
	case LevelSuccess:
		style, icon = StyleSuccess, "✓"
	case LevelError:
		style, icon = StyleError, "✗"
	}
	head := style.Render(icon + " " + t.Title)
	if t.Message == "" {
		return StyleBorder.BorderForeground(style.GetForeground()).Render(head)
	}
	return StyleBorder.BorderForeground(style.GetForeground()).Render(head + "\n" + t.Message)
}

// Classify maps err onto the error taxonomy.
func Classify(err error) Category {
	switch {
	case errors.Is(err, wallet.ErrProviderNotInstalled):
		return CategoryProvider
	case errors.Is(err, wallet.ErrNoAuthorizedAccount),
		errors.Is(err, wallet.ErrUserRejected):
		return CategoryRejected
	case errors.Is(err, contract.ErrInvalidAddress),
		errors.Is(err, contract.ErrInvalidABI),
		errors.Is(err, contract.ErrInvalidParam),
		errors.Is(err, abistore.ErrInvalidFormat),
		errors.Is(err, abistore.ErrEmptyName),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrInvalidKey),
		errors.Is(err, wallet.ErrUnknownChain):
		return CategoryInput
	case errors.Is(err, contract.ErrNotReady),
		errors.Is(err, contract.ErrSignerRequired),
		errors.Is(err, contract.ErrFunctionNotFound),
		errors.Is(err, contract.ErrAmbiguousFunction),
		errors.Is(err, abistore.ErrAbiNotFound),
		errors.Is(err, wallet.ErrNotConnected),
		errors.Is(err, wallet.ErrWatchOnly):
		return CategoryPrerequisite
	default:
		return CategoryLibrary
	}
}

// ErrorToast turns err into a titled error toast.
func ErrorToast(err error, now time.Time) Toast {
	return NewToast(LevelError, Classify(err).Title(), err.Error(), now)
}

// FormatError renders err the way commands print failures.
func FormatError(err error) string {
	return Err(Classify(err).Title()+": ") + err.Error()
}
