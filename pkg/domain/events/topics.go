package events

import "fmt"

// RegistryVersion identifies the topic table below. Every producer and
// consumer is compiled against the same table, so bumping it requires a
// coordinated deployment of all services.
const RegistryVersion = 1

// Topic is a broker topic name. Producer and consumer strings must match exactly.
type Topic string

// Topic registry
const (
	TopicUserCreated     Topic = "user-created"
	TopicUserUpdated     Topic = "user-updated"
	TopicUserKycVerified Topic = "user-kyc-verified"

	TopicEmployeeProfileCreated Topic = "employee-profile-created"
	TopicEmployeeProfileUpdated Topic = "employee-profile-updated"
	TopicEmployerProfileCreated Topic = "employer-profile-created"
	TopicEmployerProfileUpdated Topic = "employer-profile-updated"

	TopicAdvanceRequestCreated  Topic = "advance-request-created"
	TopicAdvanceRequestUpdated  Topic = "advance-request-updated"
	TopicAdvanceRequestApproved Topic = "advance-request-approved"
	TopicAdvanceRequestRejected Topic = "advance-request-rejected"

	TopicDisbursementInitiated Topic = "disbursement-initiated"
	TopicDisbursementCompleted Topic = "disbursement-completed"
	TopicDisbursementFailed    Topic = "disbursement-failed"

	TopicRepaymentScheduled Topic = "repayment-scheduled"
	TopicRepaymentCompleted Topic = "repayment-completed"
	TopicRepaymentFailed    Topic = "repayment-failed"

	TopicNotificationRequested Topic = "notification-requested"
	TopicNotificationDelivered Topic = "notification-delivered"
)

// String returns the topic name.
func (t Topic) String() string {
	return string(t)
}

// topicByType routes every event type to exactly one topic.
var topicByType = map[EventType]Topic{
	EventTypeUserCreated:  TopicUserCreated,
	EventTypeUserUpdated:  TopicUserUpdated,
	EventTypeUserVerified: TopicUserKycVerified,

	EventTypeEmployeeProfileCreated: TopicEmployeeProfileCreated,
	EventTypeEmployeeProfileUpdated: TopicEmployeeProfileUpdated,
	EventTypeEmployerProfileCreated: TopicEmployerProfileCreated,
	EventTypeEmployerProfileUpdated: TopicEmployerProfileUpdated,

	EventTypeAdvanceRequestCreated:  TopicAdvanceRequestCreated,
	EventTypeAdvanceRequestUpdated:  TopicAdvanceRequestUpdated,
	EventTypeAdvanceRequestApproved: TopicAdvanceRequestApproved,
	EventTypeAdvanceRequestRejected: TopicAdvanceRequestRejected,

	EventTypeDisbursementCreated:   TopicDisbursementInitiated,
	EventTypeDisbursementUpdated:   TopicDisbursementInitiated,
	EventTypeDisbursementCompleted: TopicDisbursementCompleted,
	EventTypeDisbursementFailed:    TopicDisbursementFailed,

	EventTypeRepaymentCreated:   TopicRepaymentScheduled,
	EventTypeRepaymentUpdated:   TopicRepaymentScheduled,
	EventTypeRepaymentCompleted: TopicRepaymentCompleted,
	EventTypeRepaymentFailed:    TopicRepaymentFailed,

	EventTypeNotificationRequested: TopicNotificationRequested,
	EventTypeNotificationDelivered: TopicNotificationDelivered,
}

// TopicFor returns the topic an event type is published on.
func TopicFor(et EventType) (Topic, error) {
	t, ok := topicByType[et]
	if !ok {
		return "", fmt.Errorf("no topic registered for event type %q", et)
	}
	return t, nil
}

// Topics returns every registered topic, each once, in registry order.
func Topics() []Topic {
	return []Topic{
		TopicUserCreated, TopicUserUpdated, TopicUserKycVerified,
		TopicEmployeeProfileCreated, TopicEmployeeProfileUpdated,
		TopicEmployerProfileCreated, TopicEmployerProfileUpdated,
		TopicAdvanceRequestCreated, TopicAdvanceRequestUpdated,
		TopicAdvanceRequestApproved, TopicAdvanceRequestRejected,
		TopicDisbursementInitiated, TopicDisbursementCompleted, TopicDisbursementFailed,
		TopicRepaymentScheduled, TopicRepaymentCompleted, TopicRepaymentFailed,
		TopicNotificationRequested, TopicNotificationDelivered,
	}
}
