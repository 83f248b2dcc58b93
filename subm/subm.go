package subm

import (
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/contest/timeline"
)

type Kind string

const (
	KindFile Kind = "file"
	KindLink Kind = "link"
)

// Subm is a persisted competition submission, stamped with the interval it
// was accepted in.
type Subm struct {
	UUID          uuid.UUID
	AuthorUUID    uuid.UUID
	CompetitionID string
	IntervalID    int
	Kind          Kind

	Link string // set for link submissions

	Filename  string // set for file submissions
	S3Key     string
	MediaType string
	SizeBytes int64

	CreatedAt time.Time
}

type SubmitParams struct {
	AuthorUUID    uuid.UUID
	CompetitionID string
	Kind          Kind
	Link          string
	Filename      string
	Content       []byte
}

type Reason string

const (
	ReasonNone              Reason = ""
	ReasonSubmissionsClosed Reason = "submissions_closed"
	ReasonQuotaExceeded     Reason = "quota_exceeded"
)

// Decision is the outcome of the submission gate.
type Decision struct {
	Allowed    bool
	IntervalID int // the interval to stamp, or the one whose quota is used up
	Reason     Reason

	Quota         int
	ExistingCount int

	// set when closed: the next window that will accept submissions
	NextWindow *timeline.Interval
	// set when closed with no window left before the timeline ends
	NextDeadline *timeline.Deadline
}
