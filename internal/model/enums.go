package model

// AuthMethod is how a customer account authenticates.
type AuthMethod string

const (
	AuthMethodMagicLink AuthMethod = "magic_link"
	AuthMethodPassword  AuthMethod = "password"
)

// LinkStatus is the state of a customer account link.
type LinkStatus string

const (
	LinkStatusActive  LinkStatus = "active"
	LinkStatusRevoked LinkStatus = "revoked"
)

// InviteStatus is the state of a portal invite token.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
)
