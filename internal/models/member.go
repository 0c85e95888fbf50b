package models

// Role distinguishes the household owner from the second member.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Member is one of the two people in a household.
//
// The reconciliation and settlement math supports exactly two members per
// household; this is a documented constraint, not a soft default. By
// convention the owner is member one wherever an ordered pair is needed
// (split fractions, category semantics).
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// HouseholdID is the household this member belongs to.
	HouseholdID string

	// DisplayName is the name used in settlement messages.
	DisplayName string

	// Role is either RoleOwner or RoleMember.
	Role Role

	// CreatedAt is the Unix timestamp when the member was created.
	CreatedAt int64
}
