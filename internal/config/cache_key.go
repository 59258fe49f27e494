package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ApplicantSessionKey returns the cache key for an applicant's login session.
func (r *CacheKeyStruct) ApplicantSessionKey(applicantID int64) string {
	return fmt.Sprintf("login:applicant:%d", applicantID)
}

// DepartmentQuestionsKey returns the cache key for a department's published
// question items.
func (r *CacheKeyStruct) DepartmentQuestionsKey(department string) string {
	return fmt.Sprintf("department:%s:questions", department)
}

// DepartmentSubmissionsKey returns the counter key for a department's
// submitted attempts.
func (r *CacheKeyStruct) DepartmentSubmissionsKey(department string) string {
	return fmt.Sprintf("department:%s:submissions", department)
}

// TotalSubmissionsKey returns the portal-wide submitted-attempt counter key.
func (r *CacheKeyStruct) TotalSubmissionsKey() string {
	return "stats:submissions:total"
}

// ResultsLiveChannel returns the Pub/Sub channel name for the staff live
// results feed.
func (r *CacheKeyStruct) ResultsLiveChannel() string {
	return "results:live"
}

var CacheKey = NewCacheKeyStruct()
