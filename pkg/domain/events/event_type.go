package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	// User events
	EventTypeUserCreated  EventType = "USER_CREATED"
	EventTypeUserUpdated  EventType = "USER_UPDATED"
	EventTypeUserVerified EventType = "USER_VERIFIED"

	// Profile events
	EventTypeEmployeeProfileCreated EventType = "EMPLOYEE_PROFILE_CREATED"
	EventTypeEmployeeProfileUpdated EventType = "EMPLOYEE_PROFILE_UPDATED"
	EventTypeEmployerProfileCreated EventType = "EMPLOYER_PROFILE_CREATED"
	EventTypeEmployerProfileUpdated EventType = "EMPLOYER_PROFILE_UPDATED"

	// Advance request events
	EventTypeAdvanceRequestCreated  EventType = "ADVANCE_REQUEST_CREATED"
	EventTypeAdvanceRequestUpdated  EventType = "ADVANCE_REQUEST_UPDATED"
	EventTypeAdvanceRequestApproved EventType = "ADVANCE_REQUEST_APPROVED"
	EventTypeAdvanceRequestRejected EventType = "ADVANCE_REQUEST_REJECTED"

	// Disbursement events
	EventTypeDisbursementCreated   EventType = "DISBURSEMENT_CREATED"
	EventTypeDisbursementUpdated   EventType = "DISBURSEMENT_UPDATED"
	EventTypeDisbursementCompleted EventType = "DISBURSEMENT_COMPLETED"
	EventTypeDisbursementFailed    EventType = "DISBURSEMENT_FAILED"

	// Repayment events
	EventTypeRepaymentCreated   EventType = "REPAYMENT_CREATED"
	EventTypeRepaymentUpdated   EventType = "REPAYMENT_UPDATED"
	EventTypeRepaymentCompleted EventType = "REPAYMENT_COMPLETED"
	EventTypeRepaymentFailed    EventType = "REPAYMENT_FAILED"

	// Notification events
	EventTypeNotificationRequested EventType = "NOTIFICATION_REQUESTED"
	EventTypeNotificationDelivered EventType = "NOTIFICATION_DELIVERED"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Valid reports whether the event type is part of the registry.
func (et EventType) Valid() bool {
	_, ok := topicByType[et]
	return ok
}
