// ABOUTME: Data models for users, summaries, and quota usage
// ABOUTME: JSON-serializable structures matching the summarizer backend payloads

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// UserType is the account tier that drives quota limits
type UserType string

const (
	UserTypeFree    UserType = "FREE"
	UserTypePremium UserType = "PREMIUM"
	UserTypeVIP     UserType = "VIP"
)

// ParseUserType converts a case-insensitive tier name to a UserType
func ParseUserType(s string) (UserType, error) {
	switch UserType(strings.ToUpper(strings.TrimSpace(s))) {
	case UserTypeFree:
		return UserTypeFree, nil
	case UserTypePremium:
		return UserTypePremium, nil
	case UserTypeVIP:
		return UserTypeVIP, nil
	}
	return "", fmt.Errorf("invalid user type %q: options are FREE, PREMIUM, VIP", s)
}

// Timestamp accepts both RFC3339 and zone-less ISO-8601 timestamps
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UserProfile is the authenticated user's account information
type UserProfile struct {
	ID                      int64     `json:"id"`
	Username                string    `json:"username"`
	Email                   string    `json:"email"`
	UserType                UserType  `json:"userType"`
	DailyLimit              int       `json:"dailyLimit"`
	MaxVideoDurationSeconds int       `json:"maxVideoDurationSeconds"`
	CreatedAt               Timestamp `json:"createdAt"`
}

// UnmarshalJSON accepts the field spellings used by the different
// backend endpoints (userId/id, maxVideoDuration/maxVideoDurationSeconds)
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile
	var aux struct {
		plain
		UserID           *int64 `json:"userId"`
		MaxVideoDuration *int   `json:"maxVideoDuration"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = UserProfile(aux.plain)
	if p.ID == 0 && aux.UserID != nil {
		p.ID = *aux.UserID
	}
	if p.MaxVideoDurationSeconds == 0 && aux.MaxVideoDuration != nil {
		p.MaxVideoDurationSeconds = *aux.MaxVideoDuration
	}
	return nil
}

// IsZero reports whether the profile carries no user identity
func (p *UserProfile) IsZero() bool {
	return p == nil || (p.ID == 0 && p.Username == "")
}

// ProfilePatch holds the fields of a shallow profile update; nil means unchanged
type ProfilePatch struct {
	Username                *string
	Email                   *string
	UserType                *UserType
	DailyLimit              *int
	MaxVideoDurationSeconds *int
}

// Apply merges the non-nil patch fields into a copy of the profile
func (pp ProfilePatch) Apply(p UserProfile) UserProfile {
	if pp.Username != nil {
		p.Username = *pp.Username
	}
	if pp.Email != nil {
		p.Email = *pp.Email
	}
	if pp.UserType != nil {
		p.UserType = *pp.UserType
	}
	if pp.DailyLimit != nil {
		p.DailyLimit = *pp.DailyLimit
	}
	if pp.MaxVideoDurationSeconds != nil {
		p.MaxVideoDurationSeconds = *pp.MaxVideoDurationSeconds
	}
	return p
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token            string   `json:"token"`
	Type             string   `json:"type,omitempty"`
	UserID           int64    `json:"userId"`
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	UserType         UserType `json:"userType"`
	DailyLimit       int      `json:"dailyLimit"`
	MaxVideoDuration int      `json:"maxVideoDuration"`
}

// Profile projects the user fields of the auth response
func (r *AuthResponse) Profile() UserProfile {
	return UserProfile{
		ID:                      r.UserID,
		Username:                r.Username,
		Email:                   r.Email,
		UserType:                r.UserType,
		DailyLimit:              r.DailyLimit,
		MaxVideoDurationSeconds: r.MaxVideoDuration,
	}
}

// GoogleAuthResponse is returned by the federated login exchange
type GoogleAuthResponse struct {
	AuthResponse
	PictureURL string `json:"pictureUrl,omitempty"`
	IsNewUser  bool   `json:"isNewUser"`
}

// AuthCheck is returned by GET /auth/check
type AuthCheck struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}

// SummaryRequest is the body of POST /summaries/generate
type SummaryRequest struct {
	VideoURL       string `json:"videoUrl"`
	Language       string `json:"language"`
	WordCountRange string `json:"wordCountRange"`
}

// SummaryRecord is a generated summary as stored by the backend
type SummaryRecord struct {
	ID                   int64     `json:"id"`
	VideoURL             string    `json:"videoUrl"`
	VideoTitle           string    `json:"videoTitle"`
	SummaryText          string    `json:"summaryText"`
	Language             string    `json:"language"`
	WordCount            int       `json:"wordCount"`
	VideoDurationSeconds int       `json:"videoDurationSeconds"`
	CreatedAt            Timestamp `json:"createdAt"`
}

// GeneratedSummary is a freshly generated summary plus the remaining quota
type GeneratedSummary struct {
	SummaryRecord
	RemainingRequests int `json:"remainingRequests"`
}

// UsageStats is returned by GET /summaries/stats
type UsageStats struct {
	RemainingRequests int      `json:"remainingRequests"`
	TotalSummaries    int64    `json:"totalSummaries"`
	DailyLimit        int      `json:"dailyLimit"`
	TodayUsage        int      `json:"todayUsage"`
	UserType          UserType `json:"userType,omitempty"`
}

// UsagePercent returns today's usage as a percentage of the daily limit
func (s *UsageStats) UsagePercent() float64 {
	if s == nil || s.DailyLimit <= 0 {
		return 0
	}
	return float64(s.TodayUsage) / float64(s.DailyLimit) * 100
}

// UserLimits is returned by GET /users/limits
type UserLimits struct {
	UserType                UserType `json:"userType"`
	DailyLimit              int      `json:"dailyLimit"`
	MaxVideoDurationSeconds int      `json:"maxVideoDurationSeconds"`
	RemainingRequests       int      `json:"remainingRequests"`
	TodayUsage              int      `json:"todayUsage"`
	HasReachedLimit         bool     `json:"hasReachedLimit"`
}

// UpgradeResult is returned by PUT /users/upgrade
type UpgradeResult struct {
	Message          string   `json:"message"`
	NewType          UserType `json:"newType"`
	DailyLimit       int      `json:"dailyLimit"`
	MaxVideoDuration int      `json:"maxVideoDuration"`
}

// Ack is a plain acknowledgement payload
type Ack struct {
	Message string `json:"message"`
}

// AccountProfile is returned by GET /users/profile: the profile plus today's usage
type AccountProfile struct {
	UserProfile
	UpdatedAt         Timestamp `json:"updatedAt"`
	RemainingRequests int       `json:"remainingRequests"`
	TodayUsage        int       `json:"todayUsage"`
}

// UnmarshalJSON decodes the embedded profile with its alias handling
func (a *AccountProfile) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.UserProfile); err != nil {
		return err
	}
	var usage struct {
		UpdatedAt         Timestamp `json:"updatedAt"`
		RemainingRequests int       `json:"remainingRequests"`
		TodayUsage        int       `json:"todayUsage"`
	}
	if err := json.Unmarshal(data, &usage); err != nil {
		return err
	}
	a.UpdatedAt = usage.UpdatedAt
	a.RemainingRequests = usage.RemainingRequests
	a.TodayUsage = usage.TodayUsage
	return nil
}

// GoogleStatus is returned by GET /auth/google/status
type GoogleStatus struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}
