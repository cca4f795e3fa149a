package router

import "fmt"

// Agent labels reported to clients and the audit trail.
const (
	agentReceptionist = "Receptionist Agent"
	agentClinical     = "Clinical Agent"
	agentHandoff      = "Receptionist → Clinical Agent"
	agentSystem       = "System"
)

// askNameGreetings are served round-robin when an unidentified session sends
// something that is neither a name nor a patient ID.
var askNameGreetings = []string{
	"Hello! I'm your post-discharge care assistant. What's your name?",
	"Good day! I'm here to help with your post-discharge care. May I have your name?",
	"Welcome! I'm here to assist with your discharge follow-up. What's your name?",
}

// encouragements answer non-medical small talk from identified patients.
var encouragements = []string{
	"That's good to hear! Please continue following your discharge instructions.",
	"Thank you for the update. Remember to take your medications as prescribed.",
	"I'm glad you're doing well. Don't forget your follow-up appointment.",
	"That sounds positive. Keep monitoring your symptoms as advised.",
}

const (
	encouragementSuffix = " If you have any medical concerns, please let me know."

	routingMessage = "This sounds like a medical concern. Let me connect you with our Clinical AI Agent."

	repromptPatientID = "Please reply with your patient ID (e.g., NEP0008) from the list I provided."

	panicApology = "I'm sorry, there was an error processing your message. Please try again."
)

// FoundGreeting is the personalized greeting sent when a discharge report is
// located. Shared with the REST greeting endpoint.
func FoundGreeting(name, dischargeDate, diagnosis string) string {
	return fmt.Sprintf("Hi %s! I found your discharge report from %s for %s. How are you feeling today? Are you following your medication schedule?",
		name, dischargeDate, diagnosis)
}

// NotFoundGreeting is the reply for a name with no discharge report on file.
func NotFoundGreeting(nameOrID string) string {
	return notFoundReply(nameOrID)
}

func foundByIDGreeting(name, diagnosis string) string {
	return fmt.Sprintf("Hi %s! I found your discharge report for %s. How are you feeling today? Are you following your medication schedule?",
		name, diagnosis)
}

func resolvedByIDReply(patientID string) string {
	return fmt.Sprintf("Thank you. I found your record (%s). How are you feeling today? Are you following your medication schedule?", patientID)
}

func notFoundReply(nameOrID string) string {
	return fmt.Sprintf("Hello! I couldn't find your discharge report for '%s'. Could you please verify your name spelling?", nameOrID)
}

func idNotFoundReply(patientID string) string {
	return fmt.Sprintf("Sorry, I couldn't find a patient with ID '%s'. Please check the ID and try again.", patientID)
}
