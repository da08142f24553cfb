package kv

import "fmt"

// Key namespaces shared by the seeding orchestrator and the suggestion
// lifecycle manager. Everything the engine stores in redis goes through
// these builders so the namespace stays in one place.
const prefix = "communio"

// RotationCounterKey is the single global counter cycling the demo catalog.
func RotationCounterKey() string {
	return prefix + ":rotation:index"
}

// SeedingRecordKey marks a community as already seeded.
func SeedingRecordKey(communityID int64) string {
	return fmt.Sprintf("%s:seeding:%d", prefix, communityID)
}

// SeedingLockKey is the short-lived lease taken around check-and-seed.
func SeedingLockKey(communityID int64) string {
	return fmt.Sprintf("%s:seeding-lock:%d", prefix, communityID)
}

// SuggestionCacheKey holds a community's cached suggestion batch.
func SuggestionCacheKey(communityID int64) string {
	return fmt.Sprintf("%s:suggestions:%d", prefix, communityID)
}

// BroadcastRecordKey holds one broadcast record for 7 days.
func BroadcastRecordKey(id string) string {
	return fmt.Sprintf("%s:broadcast:%s", prefix, id)
}
