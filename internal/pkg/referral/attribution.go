package referral

import (
	"strings"
	"unicode/utf8"

	"github.com/ManuelReschke/LeadFox/app/models"
	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

const (
	scorePhone          = 20
	scoreReferrerEmail  = 10
	scoreReferrerPhone  = 10
	scoreLongMessage    = 20
	longMessageMinRunes = 41

	MaxQualityScore = scorePhone + scoreReferrerEmail + scoreReferrerPhone + scoreLongMessage
)

// ResolveAttribution picks the partner a submission is credited to. A
// logged-in caller is credited to their own partner, or to nobody. Referral
// codes only attribute guest submissions, and only to an active partner.
func ResolveAttribution(caller usercontext.UserContext, codeMatch *models.ChannelPartner) *uint {
	if caller.IsLoggedIn {
		if caller.PartnerID == nil {
			return nil
		}
		id := *caller.PartnerID
		return &id
	}
	if codeMatch != nil && codeMatch.IsActive() {
		id := codeMatch.ID
		return &id
	}
	return nil
}

// Referrer is the optional contact block of the person passing the lead on.
type Referrer struct {
	Name  string
	Email string
	Phone string
}

func (r Referrer) empty() bool {
	return r.Name == "" && r.Email == "" && r.Phone == ""
}

// MergeMessage appends the referrer block to the lead message.
func MergeMessage(message string, ref Referrer) string {
	message = strings.TrimSpace(message)
	if ref.empty() {
		return message
	}

	var b strings.Builder
	b.WriteString(message)
	if message != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("--- Referred by ---")
	if ref.Name != "" {
		b.WriteString("\nName: " + ref.Name)
	}
	if ref.Email != "" {
		b.WriteString("\nEmail: " + ref.Email)
	}
	if ref.Phone != "" {
		b.WriteString("\nPhone: " + ref.Phone)
	}
	return b.String()
}

// QualityScore rates a public lead from 0 to MaxQualityScore. message is the
// combined message as stored, referrer block included.
func QualityScore(leadPhone string, ref Referrer, message string) int {
	score := 0
	if strings.TrimSpace(leadPhone) != "" {
		score += scorePhone
	}
	if ref.Email != "" {
		score += scoreReferrerEmail
	}
	if ref.Phone != "" {
		score += scoreReferrerPhone
	}
	if utf8.RuneCountInString(message) >= longMessageMinRunes {
		score += scoreLongMessage
	}
	return score
}
