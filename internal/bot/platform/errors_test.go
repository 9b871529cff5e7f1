package platform

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "nope"},
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	assert.True(t, IsForbidden(Classify(restError(http.StatusForbidden, 0))))
	assert.True(t, IsForbidden(Classify(restError(http.StatusBadRequest, discordgo.ErrCodeMissingPermissions))))
	assert.True(t, IsNotFound(Classify(restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage))))
	assert.ErrorIs(t, Classify(restError(http.StatusTooManyRequests, 0)), ErrRateLimited)

	var httpErr *HTTPError
	if assert.ErrorAs(t, Classify(restError(http.StatusInternalServerError, 0)), &httpErr) {
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, "nope", httpErr.Message)
	}

	plain := errors.New("plain")
	assert.Equal(t, plain, Classify(plain))
}
