package notify

import (
	"context"
	"fmt"
	"time"
)

// EventKind identifies which lifecycle change is being announced.
type EventKind string

const (
	KindInviteCreated      EventKind = "invite_created"
	KindInviteAccepted     EventKind = "invite_accepted"
	KindInviteDeclined     EventKind = "invite_declined"
	KindConnectionRevoked  EventKind = "connection_revoked"
)

// Event is one templated notification. Delivery is always fire-and-forget
// relative to the state transition it announces: the caller dispatches on a
// separate goroutine with a bounded timeout and only logs failures.
type Event struct {
	Kind        EventKind
	To          string // recipient email address
	PatientName string
	TrustedName string
	InviteURL   string    // set for invite_created only
	ExpiresAt   time.Time // set for invite_created only
}

// Dispatcher delivers care circle lifecycle notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// Subject returns the templated subject line for the event.
func (ev Event) Subject() string {
	switch ev.Kind {
	case KindInviteCreated:
		return fmt.Sprintf("%s invited you to their MindWell care circle", ev.PatientName)
	case KindInviteAccepted:
		return fmt.Sprintf("%s accepted your care circle invitation", ev.TrustedName)
	case KindInviteDeclined:
		return "Your care circle invitation was declined"
	case KindConnectionRevoked:
		return "A care circle connection was ended"
	default:
		return "MindWell care circle update"
	}
}

// Body returns the templated plain-text body for the event.
func (ev Event) Body() string {
	switch ev.Kind {
	case KindInviteCreated:
		return fmt.Sprintf(
			"Hi %s,\n\n%s would like to share their wellness updates with you on MindWell.\n\n"+
				"Open this link to view and respond to the invitation:\n%s\n\n"+
				"The invitation expires on %s. If you weren't expecting this, you can ignore it.\n",
			ev.TrustedName, ev.PatientName, ev.InviteURL,
			ev.ExpiresAt.Format("January 2, 2006"))
	case KindInviteAccepted:
		return fmt.Sprintf(
			"Hi %s,\n\n%s accepted your invitation and can now see the wellness data you chose to share.\n",
			ev.PatientName, ev.TrustedName)
	case KindInviteDeclined:
		return fmt.Sprintf(
			"Hi %s,\n\nYour care circle invitation was declined. You can send a new invitation at any time.\n",
			ev.PatientName)
	case KindConnectionRevoked:
		return "A care circle connection was ended. No further wellness data will be shared.\n"
	default:
		return ""
	}
}
