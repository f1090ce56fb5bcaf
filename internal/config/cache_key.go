package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's active session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// ViolationFeedChannel returns the Redis PubSub channel that carries
// freshly appended violations to the live admin monitor.
func (r *CacheKeyStruct) ViolationFeedChannel() string {
	return "violations:feed"
}

var CacheKey = NewCacheKeyStruct()
