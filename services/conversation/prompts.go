package conversation

import (
	"fmt"
	"strings"

	"bookline/models"
)

// bookingIntentWords trigger the booking flow on a fresh session.
var bookingIntentWords = []string{"book", "schedule", "meeting", "appointment", "call", "demo"}

func hasBookingIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range bookingIntentWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// promptFor returns the question that collects the field for the session's
// current step.
func promptFor(session *models.Session) string {
	switch session.Step {
	case models.StepAwaitName:
		return "Great — I can set that up. What's your name?"
	case models.StepAwaitEmail:
		return fmt.Sprintf("Thanks %s! What's the best email to reach you on?", session.Fields.Name)
	case models.StepAwaitCompany:
		return "Which company are you with?"
	case models.StepAwaitInquiry:
		return "What would you like to discuss in the meeting?"
	case models.StepAwaitDateTime:
		return "When would you like to meet? You can say something like \"tomorrow at 2pm\"."
	case models.StepAwaitDuration:
		return "How long should I book? Just the number of minutes (default is 30)."
	case models.StepAwaitConfirmation:
		return summaryPrompt(session)
	}
	return "How can I help you today?"
}

func summaryPrompt(session *models.Session) string {
	f := session.Fields
	var sb strings.Builder
	sb.WriteString("Here's what I have:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", f.Name))
	sb.WriteString(fmt.Sprintf("- Email: %s\n", f.Email))
	sb.WriteString(fmt.Sprintf("- Company: %s\n", f.Company))
	sb.WriteString(fmt.Sprintf("- Topic: %s\n", f.Inquiry))
	if f.DateTime != nil {
		sb.WriteString(fmt.Sprintf("- When: %s (%d minutes)\n", f.DateTime.Format("Monday, 2 Jan 2006 at 15:04 MST"), f.Duration))
	}
	sb.WriteString("Shall I book it?")
	return sb.String()
}

func confirmedMessage(booking *models.Booking) string {
	return fmt.Sprintf("You're booked! %s on %s for %d minutes. Your booking reference is %s.",
		booking.Name,
		booking.DateTime.Format("Monday, 2 Jan 2006 at 15:04 MST"),
		booking.Duration,
		booking.ID,
	)
}

func slotUnavailableMessage(alternatives []models.Slot) string {
	msg := "Unfortunately that time isn't available."
	if len(alternatives) > 0 {
		labels := make([]string, 0, 3)
		for i, s := range alternatives {
			if i == 3 {
				break
			}
			labels = append(labels, s.Label)
		}
		msg += " On that day I still have: " + strings.Join(labels, ", ") + "."
	}
	return msg + " What other date and time would work for you?"
}
