package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of an internal request.
type RequestStatus string

const (
	StatusOpen       RequestStatus = "open"
	StatusInProgress RequestStatus = "in_progress"
	StatusApproved   RequestStatus = "approved"
	StatusRejected   RequestStatus = "rejected"
	StatusClosed     RequestStatus = "closed"
	StatusCancelled  RequestStatus = "cancelled"
)

// IsTerminal reports whether the status ends the request's active life.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// RequestActionType identifies one entry in a request's action timeline.
type RequestActionType string

const (
	ActionSubmitted    RequestActionType = "submitted"
	ActionForwarded    RequestActionType = "forwarded"
	ActionApproved     RequestActionType = "approved"
	ActionRejected     RequestActionType = "rejected"
	ActionComment      RequestActionType = "comment"
	ActionClosed       RequestActionType = "closed"
	ActionGeneratedPDF RequestActionType = "generated_pdf"
)

// RequestType categorizes an internal request.
type RequestType string

const (
	TypeGeneral  RequestType = "general"
	TypeFinance  RequestType = "finance"
	TypeHR       RequestType = "hr"
	TypeProjects RequestType = "projects"
	TypeIT       RequestType = "it"
)

// Assignee is the party currently holding a request. Both fields are
// empty once the request reaches a terminal action.
type Assignee struct {
	UID  string `bson:"uid"`
	Role string `bson:"role"`
}

// RequestAction is one immutable step in a request's history. The actions
// array is the sole source of truth; status and currentAssignee on the
// parent document are projections of it.
type RequestAction struct {
	At         time.Time         `bson:"at"`
	FromUID    string            `bson:"fromUid"`
	FromRole   string            `bson:"fromRole"`
	ToUID      string            `bson:"toUid"`
	ToRole     string            `bson:"toRole"`
	ActionType RequestActionType `bson:"actionType"`
	Comment    string            `bson:"comment"`
}

// InternalRequest is a routed approval request in the "internalRequests"
// collection. Field names match the upstream wire contract.
type InternalRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Type        RequestType        `bson:"type"`
	Description string             `bson:"description"`

	CreatedByUID   string `bson:"createdByUid"`
	CreatedByEmail string `bson:"createdByEmail,omitempty"`
	CreatedByDept  string `bson:"createdByDept,omitempty"`

	Status          RequestStatus   `bson:"status"`
	CurrentAssignee Assignee        `bson:"currentAssignee"`
	Actions         []RequestAction `bson:"actions"`

	Archived bool   `bson:"archived"`
	PDFURL   string `bson:"pdfUrl,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
