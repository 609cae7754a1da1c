package handlers

import (
	"context"
	"net/http"
	"time"

	"guild-gateway/internal/cache"
	"guild-gateway/internal/common/errors"
	"guild-gateway/internal/directory"
)

// GetUsers returns the member list of a guild, cache-aside with a
// 10-minute TTL.
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, func(ctx context.Context) (interface{}, error) {
		body := decodeBody(r)
		if body.GuildID == "" {
			return nil, errors.GuildError()
		}

		return cache.Fetch(ctx, h.cache, cache.MemberListKey(body.GuildID), cache.MemberListTTL,
			func(ctx context.Context) ([]directory.MemberSummary, error) {
				if _, err := h.directory.Guild(ctx, body.GuildID); err != nil {
					return nil, err
				}
				return h.directory.Members(ctx, body.GuildID)
			})
	})
}

// GetUser returns a single member's detail, cache-aside with a 1-minute
// TTL. The two-week account age flag is derived at fetch time.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, func(ctx context.Context) (interface{}, error) {
		body := decodeBody(r)
		userID := pathID(r)

		if body.GuildID == "" {
			return nil, errors.GuildError()
		}
		if userID == "" {
			return nil, errors.UserIDError()
		}

		return cache.Fetch(ctx, h.cache, cache.MemberDetailKey(body.GuildID, userID), cache.MemberDetailTTL,
			func(ctx context.Context) (*directory.MemberDetail, error) {
				if _, err := h.directory.Guild(ctx, body.GuildID); err != nil {
					return nil, err
				}

				member, err := h.directory.Member(ctx, body.GuildID, userID)
				if err != nil {
					return nil, err
				}

				member.UnderTwoWeeksOld = directory.UnderTwoWeeks(member.CreatedAt, time.Now())
				return member, nil
			})
	})
}

// GetUsersCount returns the guild's member count, cache-aside with a
// 10-minute TTL. A resolved guild with an unknown count reports zero;
// zero is never an error.
func (h *Handlers) GetUsersCount(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, func(ctx context.Context) (interface{}, error) {
		body := decodeBody(r)
		if body.GuildID == "" {
			return nil, errors.GuildError()
		}

		count, err := cache.Fetch(ctx, h.cache, cache.MemberCountKey(body.GuildID), cache.MemberCountTTL,
			func(ctx context.Context) (int, error) {
				guild, err := h.directory.Guild(ctx, body.GuildID)
				if err != nil {
					return 0, err
				}
				return guild.MemberCount, nil
			})
		if err != nil {
			return nil, err
		}

		return map[string]int{"memberAmount": count}, nil
	})
}
