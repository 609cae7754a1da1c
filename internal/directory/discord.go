package directory

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"guild-gateway/internal/common/errors"
	"guild-gateway/internal/common/logging"
)

const membersPageSize = 1000

// DiscordConfig configures the discordgo-backed client
type DiscordConfig struct {
	Token string
	// LoginRetryInterval is the backoff between login attempts, 10s by default
	LoginRetryInterval time.Duration
}

// DiscordClient implements Client on top of a discordgo session.
// Voice presence is read from the gateway session state, which the
// GuildVoiceStates intent keeps current.
type DiscordClient struct {
	session *discordgo.Session
	logger  logging.Logger
	retry   time.Duration
}

// NewDiscordClient builds the session without opening it; call Connect
// to log in.
func NewDiscordClient(config DiscordConfig) (*DiscordClient, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}

	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildIntegrations |
		discordgo.IntentsGuildVoiceStates

	retry := config.LoginRetryInterval
	if retry <= 0 {
		retry = 10 * time.Second
	}

	return &DiscordClient{
		session: session,
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("component", "discord_client"),
		),
		retry: retry,
	}, nil
}

// Connect logs the bot in, retrying with a fixed backoff until the
// context is cancelled. A credential failure is terminal: it stops the
// loop and surfaces so startup can fail loudly instead of looping
// against an invalid token.
func (c *DiscordClient) Connect(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := c.session.Open()
		if err == nil {
			c.logger.Info("Logged in to Discord",
				logging.Int("attempt", attempt),
			)
			return nil
		}

		if isAuthFailure(err) {
			return errors.AuthError("invalid bot token")
		}

		c.logger.Warn("Discord login failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("retry_in", c.retry),
			logging.NamedError("error", err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry):
		}
	}
}

// Close closes the gateway connection
func (c *DiscordClient) Close() error {
	return c.session.Close()
}

// Guild resolves a guild by id
func (c *DiscordClient) Guild(ctx context.Context, guildID string) (*Guild, error) {
	g, err := c.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapPlatformError(err, errors.GuildError())
	}

	count := g.MemberCount
	if count == 0 {
		count = g.ApproximateMemberCount
	}

	return &Guild{
		ID:          g.ID,
		Name:        g.Name,
		MemberCount: count,
	}, nil
}

// Members enumerates all members of a guild, paging through the list endpoint
func (c *DiscordClient) Members(ctx context.Context, guildID string) ([]MemberSummary, error) {
	summaries := []MemberSummary{}
	after := ""

	for {
		members, err := c.session.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapPlatformError(err, errors.GuildError())
		}

		for _, m := range members {
			summaries = append(summaries, c.memberSummary(guildID, m, true))
		}

		if len(members) < membersPageSize {
			return summaries, nil
		}
		after = members[len(members)-1].User.ID
	}
}

// Member resolves a single guild member. UnderTwoWeeksOld is left for
// the caller to derive from CreatedAt.
func (c *DiscordClient) Member(ctx context.Context, guildID, userID string) (*MemberDetail, error) {
	m, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapPlatformError(err, errors.UserError())
	}

	createdAt, err := discordgo.SnowflakeTimestamp(m.User.ID)
	if err != nil {
		c.logger.Warn("Could not derive account creation time",
			logging.String("user_id", m.User.ID),
		)
	}

	return &MemberDetail{
		MemberSummary: c.memberSummary(guildID, m, true),
		Roles:         m.Roles,
		CreatedAt:     createdAt,
	}, nil
}

// Channel resolves a channel and verifies it belongs to the guild
func (c *DiscordClient) Channel(ctx context.Context, guildID, channelID string) (*Channel, error) {
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapPlatformError(err, errors.ChannelError())
	}
	if ch.GuildID != guildID {
		return nil, errors.ChannelError().WithContext("channel_id", channelID)
	}

	return &Channel{
		ID:    ch.ID,
		Name:  ch.Name,
		Voice: isVoiceChannel(ch.Type),
	}, nil
}

// ChannelMembers lists the members currently connected to a voice
// channel, from live voice state. Results carry no CurrentChannel; it
// would repeat the requested channel.
func (c *DiscordClient) ChannelMembers(ctx context.Context, guildID, channelID string) ([]MemberSummary, error) {
	guild, err := c.session.State.Guild(guildID)
	if err != nil {
		return nil, mapPlatformError(err, errors.GuildError())
	}

	summaries := []MemberSummary{}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}

		m, err := c.session.GuildMember(guildID, vs.UserID, discordgo.WithContext(ctx))
		if err != nil {
			c.logger.Warn("Skipping unresolvable channel member",
				logging.String("user_id", vs.UserID),
				logging.NamedError("error", err),
			)
			continue
		}

		summaries = append(summaries, c.memberSummary(guildID, m, false))
	}

	return summaries, nil
}

// MoveMember moves a member to the given voice channel
func (c *DiscordClient) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	if err := c.session.GuildMemberMove(guildID, userID, &channelID, discordgo.WithContext(ctx)); err != nil {
		return mapPlatformError(err, errors.UserError())
	}
	return nil
}

// DisconnectMember disconnects a member from voice
func (c *DiscordClient) DisconnectMember(ctx context.Context, guildID, userID string) error {
	if err := c.session.GuildMemberMove(guildID, userID, nil, discordgo.WithContext(ctx)); err != nil {
		return mapPlatformError(err, errors.UserError())
	}
	return nil
}

// SendDirectMessage delivers a direct message to a user
func (c *DiscordClient) SendDirectMessage(ctx context.Context, userID, content string) error {
	channel, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return mapPlatformError(err, errors.UserError())
	}

	if _, err := c.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return mapPlatformError(err, errors.InternalError("failed to send direct message", err))
	}
	return nil
}

func (c *DiscordClient) memberSummary(guildID string, m *discordgo.Member, withVoice bool) MemberSummary {
	s := MemberSummary{
		ID:        m.User.ID,
		Username:  m.User.Username,
		Tag:       m.User.String(),
		AvatarURL: m.AvatarURL(""),
	}

	if !m.JoinedAt.IsZero() {
		joinedAt := m.JoinedAt
		s.JoinedAt = &joinedAt
	}

	if withVoice {
		s.CurrentChannel = c.voiceChannel(guildID, m.User.ID)
	}

	return s
}

// voiceChannel reads the member's live voice state, nil when not connected
func (c *DiscordClient) voiceChannel(guildID, userID string) *ChannelInfo {
	guild, err := c.session.State.Guild(guildID)
	if err != nil {
		return nil
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID != userID || vs.ChannelID == "" {
			continue
		}

		info := &ChannelInfo{ID: vs.ChannelID}
		if ch, err := c.session.State.Channel(vs.ChannelID); err == nil {
			info.Name = ch.Name
		}
		return info
	}

	return nil
}

func isVoiceChannel(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildVoice || t == discordgo.ChannelTypeGuildStageVoice
}

// mapPlatformError translates SDK errors into the domain taxonomy:
// unknown-resource REST codes become the matching domain error, state
// misses become notFound, anything else keeps its own message at 400.
func mapPlatformError(err error, notFound *errors.AppError) error {
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownUser:
			return notFound
		}
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return notFound
		}
	}

	if stderrors.Is(err, discordgo.ErrStateNotFound) {
		return notFound
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.TimeoutError("platform request")
	}

	return err
}

// isAuthFailure reports whether a login error is a credential problem
// rather than a transient one.
func isAuthFailure(err error) bool {
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusUnauthorized
	}

	// Gateway close code 4004 is authentication failure
	return strings.Contains(err.Error(), "4004")
}
