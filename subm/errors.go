package subm

import (
	"fmt"
	"net/http"
	"time"

	"github.com/programme-lv/contest/srvcerror"
	"github.com/programme-lv/contest/timeline"
)

const ErrCodeSubmissionsClosed = "submissions_closed"

// newErrSubmissionsClosed names the next submission window. When none is
// left but the timeline is still running, it names the next deadline.
func newErrSubmissionsClosed(next *timeline.Interval, deadline *timeline.Deadline) *srvcerror.Error {
	msg := "submissions are closed, the competition has concluded"
	switch {
	case next != nil:
		msg = fmt.Sprintf("submissions are closed, %q opens at %s",
			next.Title, formatIST(next.Start))
	case deadline != nil:
		msg = fmt.Sprintf("submissions are closed, no further submission windows; %q %s at %s",
			deadline.Title, deadline.Kind, formatIST(deadline.At))
	}
	return srvcerror.New(ErrCodeSubmissionsClosed, msg).
		SetHttpStatusCode(http.StatusConflict)
}

func formatIST(t time.Time) string {
	return t.In(timeline.IST).Format("2006-01-02 15:04 MST")
}

const ErrCodeQuotaExceeded = "quota_exceeded"

func newErrQuotaExceeded(used int, quota int, interval timeline.Interval) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeQuotaExceeded,
		fmt.Sprintf("submission limit reached: %d of %d submissions used in interval %d (%s)",
			used, quota, interval.ID, interval.Title),
	).SetHttpStatusCode(http.StatusTooManyRequests)
}

const ErrCodeCompetitionNotFound = "competition_not_found"

func newErrCompetitionNotFound(id string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeCompetitionNotFound,
		fmt.Sprintf("competition %q not found", id),
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeInvalidSubmission = "invalid_submission"

func newErrInvalidSubmission(format string, args ...any) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidSubmission,
		fmt.Sprintf(format, args...),
	).SetHttpStatusCode(http.StatusBadRequest)
}

func newErrStorage(format string, err error) *srvcerror.Error {
	return srvcerror.ErrStorageUnavailable(fmt.Errorf(format, err))
}
