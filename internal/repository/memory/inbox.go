package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"OWS_Community/internal/model"
	"OWS_Community/internal/repository"
)

type submissionRepo struct{ s *Store }

func (r *submissionRepo) Create(_ context.Context, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub.ID = r.s.nextID("submissions")
	if sub.Status == "" {
		sub.Status = model.SubmissionPending
	}
	sub.CreatedAt = r.s.now()
	sub.UpdatedAt = sub.CreatedAt
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *submissionRepo) FindByID(_ context.Context, id uint64) (*model.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *submissionRepo) ListByStatus(_ context.Context, status model.SubmissionStatus) ([]model.Submission, error) {
	return r.filter(func(sub *model.Submission) bool { return sub.Status == status }), nil
}

func (r *submissionRepo) ListBySubmitter(_ context.Context, userID uint64) ([]model.Submission, error) {
	return r.filter(func(sub *model.Submission) bool { return sub.SubmittedBy == userID }), nil
}

func (r *submissionRepo) filter(keep func(*model.Submission) bool) []model.Submission {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []model.Submission{}
	for _, sub := range r.s.submissions {
		if keep(sub) {
			list = append(list, *sub)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *submissionRepo) Resolve(_ context.Context, id uint64, status model.SubmissionStatus, adminID uint64, at time.Time) (*model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if sub.Status != model.SubmissionPending {
		return nil, repository.ErrStateChanged
	}
	if status == model.SubmissionApproved {
		payload, err := json.Marshal(model.SpotHandoff{
			SubmissionID: sub.ID,
			SubmittedBy:  sub.SubmittedBy,
			Name:         sub.Name,
			Description:  sub.Description,
			Lat:          sub.Lat,
			Lng:          sub.Lng,
			ImageURL:     sub.ImageURL,
			ApprovedBy:   adminID,
			ApprovedAt:   at.UTC(),
		})
		if err != nil {
			return nil, err
		}
		for _, o := range r.s.outbox {
			if o.SubmissionID == sub.ID {
				return nil, repository.ErrDuplicate
			}
		}
		oid := r.s.nextID("spot_outbox")
		r.s.outbox[oid] = &model.SpotOutbox{
			ID:           oid,
			SubmissionID: sub.ID,
			Payload:      string(payload),
			Status:       model.OutboxPending,
			CreatedAt:    at,
			UpdatedAt:    at,
		}
	}
	resolvedBy := adminID
	resolvedAt := at
	sub.Status = status
	sub.ResolvedBy = &resolvedBy
	sub.ResolvedAt = &resolvedAt
	sub.UpdatedAt = at
	cp := *sub
	return &cp, nil
}

type outboxRepo struct{ s *Store }

func (r *outboxRepo) ListPending(_ context.Context, batchSize, maxRetry int) ([]model.SpotOutbox, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []model.SpotOutbox{}
	for _, o := range r.s.outbox {
		if o.Status == model.OutboxSent || o.Retry >= maxRetry {
			continue
		}
		list = append(list, *o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if batchSize > 0 && len(list) > batchSize {
		list = list[:batchSize]
	}
	return list, nil
}

func (r *outboxRepo) MarkSent(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.outbox[id]; ok {
		o.Status = model.OutboxSent
		o.UpdatedAt = r.s.now()
	}
	return nil
}

func (r *outboxRepo) MarkFailed(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.outbox[id]; ok {
		o.Status = model.OutboxFailed
		o.Retry++
		o.UpdatedAt = r.s.now()
	}
	return nil
}
