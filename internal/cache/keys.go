package cache

import (
	"fmt"
	"time"
)

// Per-resource TTLs. Voice presence is never cached, so channel member
// lists have no key here.
const (
	// MemberListTTL bounds staleness of guild member lists
	MemberListTTL = 600 * time.Second
	// MemberDetailTTL bounds staleness of single member details
	MemberDetailTTL = 60 * time.Second
	// MemberCountTTL bounds staleness of guild member counts
	MemberCountTTL = 600 * time.Second
)

// MemberListKey is the cache key for a guild's member list
func MemberListKey(guildID string) string {
	return fmt.Sprintf("guild:%s:users", guildID)
}

// MemberDetailKey is the cache key for a single member's detail
func MemberDetailKey(guildID, userID string) string {
	return fmt.Sprintf("guild:%s:user:%s:data", guildID, userID)
}

// MemberCountKey is the cache key for a guild's member count
func MemberCountKey(guildID string) string {
	return fmt.Sprintf("guild:%s:memberCount", guildID)
}
