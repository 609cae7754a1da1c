package directory

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"guild-gateway/internal/common/errors"
)

func TestUnderTwoWeeks(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("one day old account", func(t *testing.T) {
		assert.True(t, UnderTwoWeeks(now.Add(-24*time.Hour), now))
	})

	t.Run("just under fourteen days", func(t *testing.T) {
		assert.True(t, UnderTwoWeeks(now.Add(-14*24*time.Hour+time.Second), now))
	})

	t.Run("exactly fourteen days", func(t *testing.T) {
		assert.False(t, UnderTwoWeeks(now.Add(-14*24*time.Hour), now))
	})

	t.Run("older account", func(t *testing.T) {
		assert.False(t, UnderTwoWeeks(now.Add(-30*24*time.Hour), now))
	})
}

func TestIsVoiceChannel(t *testing.T) {
	assert.True(t, isVoiceChannel(discordgo.ChannelTypeGuildVoice))
	assert.True(t, isVoiceChannel(discordgo.ChannelTypeGuildStageVoice))
	assert.False(t, isVoiceChannel(discordgo.ChannelTypeGuildText))
	assert.False(t, isVoiceChannel(discordgo.ChannelTypeDM))
}

func restError(code int, status int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Message:  &discordgo.APIErrorMessage{Code: code},
		Response: &http.Response{StatusCode: status},
	}
}

func TestMapPlatformError(t *testing.T) {
	notFound := errors.UserError()

	t.Run("unknown guild code maps to not found", func(t *testing.T) {
		err := mapPlatformError(restError(discordgo.ErrCodeUnknownGuild, http.StatusNotFound), errors.GuildError())
		assert.True(t, errors.IsKind(err, errors.KindGuild))
	})

	t.Run("unknown member code maps to not found", func(t *testing.T) {
		err := mapPlatformError(restError(discordgo.ErrCodeUnknownMember, http.StatusNotFound), notFound)
		assert.True(t, errors.IsKind(err, errors.KindUser))
	})

	t.Run("unknown channel code maps to not found", func(t *testing.T) {
		err := mapPlatformError(restError(discordgo.ErrCodeUnknownChannel, http.StatusNotFound), errors.ChannelError())
		assert.True(t, errors.IsKind(err, errors.KindChannel))
	})

	t.Run("bare 404 maps to not found", func(t *testing.T) {
		err := mapPlatformError(restError(0, http.StatusNotFound), notFound)
		assert.True(t, errors.IsKind(err, errors.KindUser))
	})

	t.Run("state miss maps to not found", func(t *testing.T) {
		err := mapPlatformError(discordgo.ErrStateNotFound, errors.GuildError())
		assert.True(t, errors.IsKind(err, errors.KindGuild))
	})

	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		err := mapPlatformError(context.DeadlineExceeded, notFound)
		assert.True(t, errors.IsKind(err, errors.KindTimeout))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := fmt.Errorf("rate limited")
		assert.Equal(t, cause, mapPlatformError(cause, notFound))
	})
}

func TestIsAuthFailure(t *testing.T) {
	t.Run("401 response", func(t *testing.T) {
		assert.True(t, isAuthFailure(restError(0, http.StatusUnauthorized)))
	})

	t.Run("gateway close code 4004", func(t *testing.T) {
		assert.True(t, isAuthFailure(fmt.Errorf("websocket: close 4004: Authentication failed")))
	})

	t.Run("transient failure", func(t *testing.T) {
		assert.False(t, isAuthFailure(fmt.Errorf("dial tcp: connection refused")))
	})
}

func TestNewDiscordClient(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		client, err := NewDiscordClient(DiscordConfig{})
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("defaults the retry interval", func(t *testing.T) {
		client, err := NewDiscordClient(DiscordConfig{Token: "token"})
		assert.NoError(t, err)
		assert.Equal(t, 10*time.Second, client.retry)
	})
}
