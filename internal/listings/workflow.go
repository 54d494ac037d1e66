package listings

import (
	"fmt"

	"github.com/essenza-market/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
)

// Event names a listing lifecycle action.
type Event string

const (
	// EventSubmit moves a draft into moderation.
	EventSubmit Event = "submit"
	// EventActivate publishes a pending listing.
	EventActivate Event = "activate"
	// EventReject declines a pending listing.
	EventReject Event = "reject"
	// EventRevise pulls a published listing back into moderation.
	EventRevise Event = "revise"
	// EventMarkSold retires a published listing after its stock sells out.
	EventMarkSold Event = "mark_sold"
)

// transitions is the full listing state machine. Anything not listed is an
// invalid move.
var transitions = map[enums.ListingStatus]map[Event]enums.ListingStatus{
	enums.ListingStatusDraft: {
		EventSubmit: enums.ListingStatusPending,
	},
	enums.ListingStatusPending: {
		EventActivate: enums.ListingStatusApproved,
		EventReject:   enums.ListingStatusRejected,
	},
	enums.ListingStatusApproved: {
		EventRevise:   enums.ListingStatusPending,
		EventMarkSold: enums.ListingStatusSold,
	},
	enums.ListingStatusRejected: {
		EventSubmit: enums.ListingStatusPending,
	},
}

// Transition resolves the next status for an event, or a STATE_CONFLICT error
// when the event is not legal from the current status.
func Transition(current enums.ListingStatus, event Event) (enums.ListingStatus, error) {
	next, ok := transitions[current][event]
	if !ok {
		return current, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("listing in status %q does not allow %q", current, event),
		)
	}
	return next, nil
}

// CanTransition reports whether the event is legal from the current status.
func CanTransition(current enums.ListingStatus, event Event) bool {
	_, ok := transitions[current][event]
	return ok
}
