// Package models defines the data contract for wedding invitations.
//
// # Entities
//
//   - Invitation: the shareable record describing the event and its page content
//   - BankAccount, SocialLink: embedded in an Invitation, no identity of their own
//   - Comment: a guest's message and attendance answer, references an Invitation
//   - Gift: a guest's gift notice, references an Invitation, confirmed by the owner
//
// # Optional fields
//
// Optional scalars are pointers: nil means absent, a pointer to "" means
// present but empty. Optional lists keep the same distinction between a nil
// slice (absent, encoded as JSON null) and an empty slice (encoded as []).
// Stores must preserve both.
//
// # Relationships
//
// Embedded collections live and die with their Invitation and are replaced
// wholesale on update. Comments and Gifts point at their Invitation through
// InvitationID strings rather than pointers.
package models
