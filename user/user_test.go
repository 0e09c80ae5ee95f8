package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthSignedIn(t *testing.T) {
	assert.False(t, Auth{}.SignedIn())
	assert.True(t, Auth{ID: "user_123"}.SignedIn())
}

func TestAuthDisplayName(t *testing.T) {
	tests := []struct {
		name string
		auth Auth
		want string
	}{
		{"name", Auth{Name: "Dana", Email: "dana@example.com"}, "Dana"},
		{"email local part", Auth{Email: "dana@example.com"}, "dana"},
		{"nothing", Auth{ID: "user_123"}, "Account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auth.DisplayName())
		})
	}
}

func TestSubscriptionPaid(t *testing.T) {
	tests := []struct {
		sub  Subscription
		want bool
	}{
		{Subscription{Plan: PlanPro, Status: StatusActive}, true},
		{Subscription{Plan: PlanDealer, Status: StatusTrialing}, true},
		{Subscription{Plan: PlanPro, Status: StatusPastDue}, false},
		{Subscription{Plan: PlanPro, Status: StatusCanceled}, false},
		{Subscription{Plan: PlanFree, Status: StatusActive}, false},
		{Subscription{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.sub.Plan+"/"+string(tt.sub.Status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Paid())
			assert.Equal(t, tt.want, tt.sub.CanViewReports())
		})
	}
}

func TestSubscriptionCanSaveHistory(t *testing.T) {
	assert.False(t, Subscription{}.CanSaveHistory(Auth{}))
	assert.True(t, Subscription{}.CanSaveHistory(Auth{ID: "user_123"}))
}
