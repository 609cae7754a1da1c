package handlers

import (
	"context"
	"net/http"

	"guild-gateway/internal/common/errors"
)

// ChannelUsers returns the members currently connected to a voice
// channel. Voice presence must be real-time, so this endpoint never
// touches the cache store.
func (h *Handlers) ChannelUsers(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, func(ctx context.Context) (interface{}, error) {
		body := decodeBody(r)
		if body.GuildID == "" {
			return nil, errors.GuildError()
		}
		if body.ChannelID == "" {
			return nil, errors.ChannelError()
		}

		if _, err := h.directory.Guild(ctx, body.GuildID); err != nil {
			return nil, err
		}

		channel, err := h.directory.Channel(ctx, body.GuildID, body.ChannelID)
		if err != nil {
			return nil, err
		}
		if !channel.Voice {
			return nil, errors.ChannelIsTextBasedError()
		}

		return h.directory.ChannelMembers(ctx, body.GuildID, body.ChannelID)
	})
}

// MoveUser moves a member to the target voice channel. Guild, member
// and destination channel are all resolved before the move is invoked.
// List and detail cache entries are not invalidated; their TTLs bound
// the staleness window.
func (h *Handlers) MoveUser(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, func(ctx context.Context) (interface{}, error) {
		body := decodeBody(r)
		userID := pathID(r)

		if body.GuildID == "" {
			return nil, errors.GuildError()
		}
		if body.ChannelID == "" {
			return nil, errors.ChannelError()
		}
		if userID == "" {
			return nil, errors.UserIDError()
		}

		if _, err := h.directory.Guild(ctx, body.GuildID); err != nil {
			return nil, err
		}
		if _, err := h.directory.Member(ctx, body.GuildID, userID); err != nil {
			return nil, err
		}
		if _, err := h.directory.Channel(ctx, body.GuildID, body.ChannelID); err != nil {
			return nil, err
		}

		if err := h.directory.MoveMember(ctx, body.GuildID, userID, body.ChannelID); err != nil {
			return nil, err
		}

		return map[string]string{"message": "User moved successfully"}, nil
	})
}

// KickUserInVoice disconnects a member from voice. The member must
// currently be connected.
func (h *Handlers) KickUserInVoice(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, func(ctx context.Context) (interface{}, error) {
		body := decodeBody(r)
		userID := pathID(r)

		if body.GuildID == "" {
			return nil, errors.GuildError()
		}
		if userID == "" {
			return nil, errors.UserIDError()
		}

		if _, err := h.directory.Guild(ctx, body.GuildID); err != nil {
			return nil, err
		}

		member, err := h.directory.Member(ctx, body.GuildID, userID)
		if err != nil {
			return nil, err
		}
		if member.CurrentChannel == nil {
			return nil, errors.UserNotInVoiceError()
		}

		if err := h.directory.DisconnectMember(ctx, body.GuildID, userID); err != nil {
			return nil, err
		}

		return "User disconnected!", nil
	})
}
