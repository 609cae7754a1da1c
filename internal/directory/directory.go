// Package directory abstracts the external chat platform behind a
// capability interface: guild, member and channel lookups, voice
// mutations, and direct-message delivery. The request pipeline and the
// queue consumer depend on this interface only; the discordgo-backed
// implementation lives in discord.go.
package directory

import (
	"context"
	"time"
)

// Guild is the resolved view of a guild
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// Channel is the resolved view of a guild channel
type Channel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Voice bool   `json:"voice"`
}

// ChannelInfo identifies the voice channel a member is connected to
type ChannelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberSummary is the member view returned by list endpoints.
// CurrentChannel is nil when the member is not connected to voice.
type MemberSummary struct {
	ID             string       `json:"id"`
	Username       string       `json:"username"`
	Tag            string       `json:"tag"`
	AvatarURL      string       `json:"avatarURL"`
	JoinedAt       *time.Time   `json:"joinedAt,omitempty"`
	CurrentChannel *ChannelInfo `json:"currentChannel,omitempty"`
}

// MemberDetail extends MemberSummary with the fields only the single
// member endpoint returns. UnderTwoWeeksOld is derived by the request
// pipeline from CreatedAt at fetch time.
type MemberDetail struct {
	MemberSummary
	Roles            []string  `json:"roles"`
	CreatedAt        time.Time `json:"createdAt"`
	UnderTwoWeeksOld bool      `json:"isUserUnderTwoWeeksOld"`
}

// Client is the capability provider over the chat platform. All calls
// are safe for concurrent use; the underlying connection is serialized
// by the platform SDK.
type Client interface {
	// Guild resolves a guild by id
	Guild(ctx context.Context, guildID string) (*Guild, error)
	// Members enumerates all members of a guild
	Members(ctx context.Context, guildID string) ([]MemberSummary, error)
	// Member resolves a single guild member
	Member(ctx context.Context, guildID, userID string) (*MemberDetail, error)
	// Channel resolves a channel within a guild
	Channel(ctx context.Context, guildID, channelID string) (*Channel, error)
	// ChannelMembers lists the members currently connected to a voice channel
	ChannelMembers(ctx context.Context, guildID, channelID string) ([]MemberSummary, error)
	// MoveMember moves a member to the given voice channel
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
	// DisconnectMember disconnects a member from voice
	DisconnectMember(ctx context.Context, guildID, userID string) error
	// SendDirectMessage delivers a direct message to a user
	SendDirectMessage(ctx context.Context, userID, content string) error
}

// UnderTwoWeeks reports whether an account created at createdAt is less
// than 14 days old at now. Exactly 14 days is not under two weeks.
func UnderTwoWeeks(createdAt, now time.Time) bool {
	return createdAt.After(now.Add(-14 * 24 * time.Hour))
}
