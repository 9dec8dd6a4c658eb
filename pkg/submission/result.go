package submission

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// Status is the outcome of a stage or of a whole submission
type Status string

const (
	StatusOK      Status = "ok"
	StatusFail    Status = "fail"
	StatusNotSent Status = "not-sent"
)

// State is the position of a submission in its pipeline. It only moves
// forward: pending, sent, then ok or fail.
type State string

const (
	StatePending State = "pending"
	StateSent    State = "sent"
	StateOK      State = "ok"
	StateFail    State = "fail"
)

// Stage names, in pipeline order
const (
	StageDeclaration       = "declaration"
	StageEnvelope          = "envelope"
	StageWebserviceRequest = "webserviceRequest"
	StageResponse          = "response"
)

// Stages lists the stage names in pipeline order.
var Stages = []string{StageDeclaration, StageEnvelope, StageWebserviceRequest, StageResponse}

// Stage is the recorded outcome of one pipeline stage
type Stage struct {
	Status Status `json:"status"`
	Data   string `json:"data,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Result is the record of one declaration submission.
type Result struct {
	ID          string            `json:"id"`
	File        string            `json:"file"`
	ClientID    string            `json:"clientId"`
	Target      transport.Target  `json:"target"`
	State       State             `json:"state"`
	Status      Status            `json:"status"`
	Stages      map[string]*Stage `json:"stages"`
	ErrorList   []string          `json:"errorList"`
	WarningList []string          `json:"warningList"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt time.Time         `json:"completedAt"`

	// Err is the error that failed the submission
	Err error `json:"-"`
}

// NewResult starts the record of a submission.
func NewResult(file, clientID string, target transport.Target) *Result {
	return &Result{
		ID:          uuid.NewString(),
		File:        file,
		ClientID:    clientID,
		Target:      target,
		State:       StatePending,
		Status:      StatusNotSent,
		Stages:      make(map[string]*Stage, len(Stages)),
		ErrorList:   []string{},
		WarningList: []string{},
		CreatedAt:   time.Now().UTC(),
	}
}

// StageOK records a successful stage.
func (r *Result) StageOK(name, data string) {
	if r.done() {
		return
	}
	r.Stages[name] = &Stage{Status: StatusOK, Data: data}
}

// StageFail records the failure of a stage and fails the submission. Only
// the first failure is recorded.
func (r *Result) StageFail(name string, err error) {
	if r.done() {
		return
	}
	reason := Reason(err)
	r.Stages[name] = &Stage{Status: StatusFail, Reason: reason}
	r.Status = StatusFail
	r.ErrorList = append(r.ErrorList, reason)
	r.Err = err
	r.finish(StateFail)
}

// AddWarning appends a warning that does not affect the outcome.
func (r *Result) AddWarning(format string, args ...any) {
	r.WarningList = append(r.WarningList, fmt.Sprintf(format, args...))
}

// Failed reports whether the submission failed.
func (r *Result) Failed() bool {
	return r.Status == StatusFail
}

// Stage returns the named stage, or nil if the pipeline never reached it.
func (r *Result) Stage(name string) *Stage {
	return r.Stages[name]
}

func (r *Result) markSent() {
	if r.State == StatePending {
		r.State = StateSent
	}
}

func (r *Result) succeed() {
	if r.done() {
		return
	}
	r.Status = StatusOK
	r.finish(StateOK)
}

func (r *Result) finish(state State) {
	r.State = state
	r.CompletedAt = time.Now().UTC()
}

func (r *Result) done() bool {
	return r.State == StateOK || r.State == StateFail
}

// BusinessError is a well-formed service response rejecting the declaration.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("declaration rejected with code %q: %s", e.Code, e.Message)
}

// Reason formats err as recorded in a Result.
func Reason(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return fmt.Sprintf("Erro AT - %s: %s", be.Code, be.Message)
	}
	if err == nil {
		return "Erro - unknown error"
	}
	return "Erro - " + err.Error()
}
