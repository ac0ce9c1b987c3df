package notify

import (
	"bytes"
	"text/template"
)

const (
	KindBookingCreated   = "booking_created"
	KindBookingConfirmed = "booking_confirmed"
	KindBookingCancelled = "booking_cancelled"
	KindBookingReminder  = "booking_reminder"

	KindGarageApproved = "garage_approved"

	KindSubscriptionActivated = "subscription_activated"
	KindSubscriptionPastDue   = "subscription_past_due"
	KindSubscriptionSuspended = "subscription_suspended"
)

type message struct {
	Title string
	Body  string
}

var messageTemplates = map[string]message{
	KindBookingCreated: {
		Title: "Booking received",
		Body:  "Your MOT booking {{.reference}} at {{.garage}} for {{.registration}} on {{.start}} has been received and is awaiting confirmation.",
	},
	KindBookingConfirmed: {
		Title: "Booking confirmed",
		Body:  "Your booking {{.reference}} at {{.garage}} is confirmed.",
	},
	KindBookingCancelled: {
		Title: "Booking cancelled",
		Body:  "Booking {{.reference}} at {{.garage}} has been cancelled.",
	},
	KindBookingReminder: {
		Title: "MOT reminder",
		Body:  "Reminder: your MOT at {{.garage}} is tomorrow at {{.start}}.",
	},
	KindGarageApproved: {
		Title: "Garage approved",
		Body:  "{{.garage}} has been approved and is now visible to drivers.",
	},
	KindSubscriptionActivated: {
		Title: "Subscription active",
		Body:  "Your {{.plan}} subscription is now active.",
	},
	KindSubscriptionPastDue: {
		Title: "Payment failed",
		Body:  "A subscription payment failed. Please update your payment details to keep your listing visible.",
	},
	KindSubscriptionSuspended: {
		Title: "Listing suspended",
		Body:  "Your listing has been suspended after repeated failed payments.",
	},
}

// Render fills the template for a notification kind. Unknown kinds fall back
// to the kind string itself so nothing is silently dropped.
func Render(kind string, data map[string]any) (title, body string) {
	msg, ok := messageTemplates[kind]
	if !ok {
		return kind, kind
	}

	tmpl, err := template.New(kind).Parse(msg.Body)
	if err != nil {
		return msg.Title, msg.Body
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return msg.Title, msg.Body
	}

	return msg.Title, buf.String()
}
