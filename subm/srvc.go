package subm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/contest/logger"
	"github.com/programme-lv/contest/settings"
	"github.com/programme-lv/contest/timeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/programme-lv/contest/subm")

// SettingsFacade supplies the administrator-controlled quota. Reading it
// also reconciles the persisted snapshot with the timeline.
type SettingsFacade interface {
	Snapshot(ctx context.Context, now time.Time) (settings.Snapshot, error)
}

type SubmSrvc struct {
	tl       timeline.Timeline
	settings SettingsFacade
	repo     SubmRepo
	payloads PayloadStore
	events   EventPublisher
	now      func() time.Time
}

func NewSubmSrvc(
	tl timeline.Timeline,
	settings SettingsFacade,
	repo SubmRepo,
	payloads PayloadStore,
	events EventPublisher,
	now func() time.Time,
) *SubmSrvc {
	if now == nil {
		now = timeline.Clock
	}
	return &SubmSrvc{
		tl:       tl,
		settings: settings,
		repo:     repo,
		payloads: payloads,
		events:   events,
		now:      now,
	}
}

// AttemptSubmission decides whether an author holding existingCount
// submissions in the open interval may submit one more at now. A closed
// window or a used up quota is a Decision, not an error; only storage
// failures are returned as errors.
func (s *SubmSrvc) AttemptSubmission(
	ctx context.Context,
	authorUUID uuid.UUID,
	competitionID string,
	existingCount int,
	now time.Time,
) (Decision, error) {
	if competitionID != s.tl.CompetitionID() {
		return Decision{}, newErrCompetitionNotFound(competitionID)
	}

	intervalID, open := s.tl.CurrentSubmissionInterval(now)
	if !open {
		d := Decision{Allowed: false, Reason: ReasonSubmissionsClosed}
		if next, ok := s.tl.NextSubmissionWindow(now); ok {
			d.NextWindow = &next
		} else if !s.tl.Concluded(now) {
			if deadline, ok := s.tl.NextDeadline(now); ok {
				d.NextDeadline = &deadline
			}
		}
		return d, nil
	}

	// the quota is policy, read it as stored
	snap, err := s.settings.Snapshot(ctx, now)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		IntervalID:    intervalID,
		Quota:         snap.MaxSubmissionsPerInterval,
		ExistingCount: existingCount,
	}
	if existingCount >= snap.MaxSubmissionsPerInterval {
		d.Reason = ReasonQuotaExceeded
		return d, nil
	}
	d.Allowed = true
	return d, nil
}

// decisionErr converts a refusal into the service error shown to the author.
func (s *SubmSrvc) decisionErr(d Decision) error {
	switch d.Reason {
	case ReasonSubmissionsClosed:
		return newErrSubmissionsClosed(d.NextWindow, d.NextDeadline)
	case ReasonQuotaExceeded:
		iv, _ := s.tl.Interval(d.IntervalID)
		return newErrQuotaExceeded(d.ExistingCount, d.Quota, iv)
	}
	return nil
}

// SubmitSol runs the gate and stores the submission. The final quota check
// is repeated inside the same transaction as the insert, so concurrent
// requests from one author can not exceed the quota.
func (s *SubmSrvc) SubmitSol(ctx context.Context, p SubmitParams) (res Subm, err error) {
	ctx, span := tracer.Start(ctx, "subm.SubmitSol")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	now := s.now()
	log := logger.FromContext(ctx).With("author_uuid", p.AuthorUUID, "competition_id", p.CompetitionID)

	if err := validatePayload(p); err != nil {
		return Subm{}, err
	}
	if p.CompetitionID != s.tl.CompetitionID() {
		return Subm{}, newErrCompetitionNotFound(p.CompetitionID)
	}

	existing := 0
	if intervalID, open := s.tl.CurrentSubmissionInterval(now); open {
		existing, err = s.repo.CountSubms(ctx, p.AuthorUUID, p.CompetitionID, intervalID)
		if err != nil {
			return Subm{}, newErrStorage("failed to count submissions: %w", err)
		}
	}

	d, err := s.AttemptSubmission(ctx, p.AuthorUUID, p.CompetitionID, existing, now)
	if err != nil {
		return Subm{}, err
	}
	span.SetAttributes(
		attribute.Int("subm.interval_id", d.IntervalID),
		attribute.Bool("subm.allowed", d.Allowed))
	if !d.Allowed {
		log.Info("submission refused", "reason", d.Reason, "interval_id", d.IntervalID, "quota", d.Quota)
		return Subm{}, s.decisionErr(d)
	}

	entity := Subm{
		UUID:          uuid.New(),
		AuthorUUID:    p.AuthorUUID,
		CompetitionID: p.CompetitionID,
		IntervalID:    d.IntervalID,
		Kind:          p.Kind,
		CreatedAt:     now,
	}
	switch p.Kind {
	case KindLink:
		entity.Link = p.Link
	case KindFile:
		key := payloadKey(p.CompetitionID, d.IntervalID, entity.UUID)
		stored, err := s.payloads.StoreFile(ctx, key, p.Content)
		if err != nil {
			return Subm{}, newErrStorage("failed to store submission file: %w", err)
		}
		entity.Filename = p.Filename
		entity.S3Key = stored.S3Key
		entity.MediaType = stored.MediaType
		entity.SizeBytes = int64(len(p.Content))
	}

	err = s.repo.InsertWithinQuota(ctx, entity, d.Quota)
	if err != nil {
		if entity.S3Key != "" {
			s.discardFile(ctx, entity.S3Key)
		}
		if errors.Is(err, ErrQuotaReached) {
			used := d.Quota
			var qerr *QuotaReachedError
			if errors.As(err, &qerr) {
				used = qerr.Count
			}
			iv, _ := s.tl.Interval(d.IntervalID)
			log.Info("submission refused by concurrent insert", "interval_id", d.IntervalID, "used", used)
			return Subm{}, newErrQuotaExceeded(used, d.Quota, iv)
		}
		return Subm{}, newErrStorage("failed to store submission: %w", err)
	}

	log.Info("submission created", "subm_uuid", entity.UUID, "interval_id", entity.IntervalID)

	err = s.events.PublishSubmCreated(ctx, SubmCreated{
		SubmUUID:      entity.UUID,
		AuthorUUID:    entity.AuthorUUID,
		CompetitionID: entity.CompetitionID,
		IntervalID:    entity.IntervalID,
		Kind:          entity.Kind,
		CreatedAt:     entity.CreatedAt,
	})
	if err != nil {
		log.Warn("failed to publish subm created event", "error", err)
	}

	return entity, nil
}

// discardFile removes a payload whose submission was not persisted. Failure
// leaves an orphaned object and is only logged.
func (s *SubmSrvc) discardFile(ctx context.Context, key string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.payloads.DeleteFile(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("failed to delete orphaned submission file", "s3_key", key, "error", err)
	}
}

func (s *SubmSrvc) ListSubms(ctx context.Context, authorUUID uuid.UUID, competitionID string) ([]Subm, error) {
	if competitionID != s.tl.CompetitionID() {
		return nil, newErrCompetitionNotFound(competitionID)
	}
	subms, err := s.repo.ListByAuthor(ctx, authorUUID, competitionID)
	if err != nil {
		return nil, newErrStorage("failed to list submissions: %w", err)
	}
	return subms, nil
}

func (s *SubmSrvc) Timeline() timeline.Timeline {
	return s.tl
}
