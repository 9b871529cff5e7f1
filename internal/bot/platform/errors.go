package platform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var (
	// The bot lacks a permission for the operation.
	ErrForbidden = errors.New("forbidden")
	// The target message, channel, member or role is already gone.
	ErrNotFound = errors.New("not found")
	// Discord asked us to slow down and the request was given up.
	ErrRateLimited = errors.New("rate limited")
)

// Any other failed REST call.
type HTTPError struct {
	Status  int
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("discord http %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Maps discordgo REST errors onto ErrForbidden, ErrNotFound, ErrRateLimited or *HTTPError.
//
// Errors which did not come from a REST call are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		var rl *discordgo.RateLimitError
		if errors.As(err, &rl) {
			return fmt.Errorf("%w: %s", ErrRateLimited, err.Error())
		}
		return err
	}

	status, code, msg := 0, 0, err.Error()
	if rest.Response != nil {
		status = rest.Response.StatusCode
	}
	if rest.Message != nil {
		code = rest.Message.Code
		msg = rest.Message.Message
	}

	switch {
	case status == http.StatusForbidden,
		code == discordgo.ErrCodeMissingPermissions,
		code == discordgo.ErrCodeMissingAccess:
		return fmt.Errorf("%w: %s", ErrForbidden, msg)
	case status == http.StatusNotFound,
		code == discordgo.ErrCodeUnknownMessage,
		code == discordgo.ErrCodeUnknownChannel,
		code == discordgo.ErrCodeUnknownMember,
		code == discordgo.ErrCodeUnknownRole:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return &HTTPError{Status: status, Code: code, Message: msg}
	}
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
