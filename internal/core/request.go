package core

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request is an inbound event that expects an acknowledgement.
// The set of variants is closed: JoinRequest, MessageRequest, LeaveRequest.
type Request interface {
	request()
}

// JoinRequest asks to enter a room under a display name.
type JoinRequest struct {
	Username string `validate:"required"`
	Room     string `validate:"required"`
}

// MessageRequest posts text to the sender's current room.
type MessageRequest struct {
	Text string
}

// LeaveRequest exits the current room, if any.
type LeaveRequest struct{}

func (JoinRequest) request()    {}
func (MessageRequest) request() {}
func (LeaveRequest) request()   {}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize checks that both join fields are present as sent, then trims them.
// Fields made only of whitespace pass and are stored trimmed.
func (r JoinRequest) Normalize() (JoinRequest, error) {
	if err := validate.Struct(r); err != nil {
		return r, errMissingFields
	}
	r.Username = strings.TrimSpace(r.Username)
	r.Room = strings.TrimSpace(r.Room)
	return r, nil
}

// Ack status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Ack is the synchronous reply to a Request.
type Ack struct {
	Status  string
	Users   []string // set on successful join
	Code    string   // set on error
	Message string   // set on error
}

// OK reports whether the request succeeded.
func (a Ack) OK() bool {
	return a.Status == StatusOK
}

func ackOK() Ack {
	return Ack{Status: StatusOK}
}

// ErrorAck builds a failed acknowledgement from a domain error.
func ErrorAck(err *CoreError) Ack {
	return Ack{Status: StatusError, Code: err.Code, Message: err.Message}
}
