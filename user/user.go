// Package user holds the identity and subscription of the person browsing,
// as asserted by the external identity provider.
package user

import "strings"

// Plan names issued by the identity provider.
const (
	PlanFree   = "free"
	PlanPro    = "pro"
	PlanDealer = "dealer"
)

// SubscriptionStatus mirrors the billing provider's subscription states.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Auth is the signed-in user. The zero value is an anonymous visitor.
type Auth struct {
	ID    string
	Name  string
	Email string
	OrgID string
}

// SignedIn reports whether the request carries a valid identity.
func (a Auth) SignedIn() bool {
	return a.ID != ""
}

// DisplayName is the name shown in navigation.
func (a Auth) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if name, _, ok := strings.Cut(a.Email, "@"); ok && name != "" {
		return name
	}
	return "Account"
}

// Subscription is the plan attached to an Auth.
type Subscription struct {
	Plan   string
	Status SubscriptionStatus
}

// Active reports whether the subscription is in good standing.
func (s Subscription) Active() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}

// Paid reports whether the plan is above free and active.
func (s Subscription) Paid() bool {
	return s.Active() && s.Plan != "" && s.Plan != PlanFree
}

// CanViewReports reports whether vehicle history reports are unlocked.
func (s Subscription) CanViewReports() bool {
	return s.Paid()
}

// CanSaveHistory reports whether recent searches are remembered.
func (s Subscription) CanSaveHistory(a Auth) bool {
	return a.SignedIn()
}
