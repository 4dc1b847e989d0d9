package service

import (
	"context"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"OWS_Community/internal/model"
	"OWS_Community/internal/pkg"
	"OWS_Community/internal/repository"

	"github.com/rs/zerolog"
)

const (
	maxSpotNameLen    = 128
	maxDescriptionLen = 2000
	notifyTimeout     = 10 * time.Second
)

type SubmitInput struct {
	Name        string
	Description string
	Lat         *float64
	Lng         *float64
	ImageURL    string
}

// InboxService 地点提交审核队列
type InboxService struct {
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	notifier    Notifier
	metrics     *pkg.Metrics
	log         zerolog.Logger
	now         func() time.Time

	// 通知在后台发送，Wait 用于优雅退出
	wg sync.WaitGroup
}

func NewInboxService(repos *repository.Repositories, notifier Notifier, metrics *pkg.Metrics, log zerolog.Logger, now func() time.Time) *InboxService {
	if now == nil {
		now = time.Now
	}
	return &InboxService{
		submissions: repos.Submissions,
		users:       repos.Users,
		notifier:    notifier,
		metrics:     metrics,
		log:         log,
		now:         now,
	}
}

func (s *InboxService) Submit(ctx context.Context, caller *model.User, in SubmitInput) (*model.Submission, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if caller.Blocked {
		return nil, ErrBlocked
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if utf8.RuneCountInString(name) > maxSpotNameLen {
		return nil, invalid("name is limited to %d characters", maxSpotNameLen)
	}
	if in.Lat == nil || in.Lng == nil {
		return nil, invalid("lat and lng are required")
	}
	lat, lng := *in.Lat, *in.Lng
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, invalid("coordinates out of range")
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, invalid("description is limited to %d characters", maxDescriptionLen)
	}
	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL != "" {
		if u, err := url.Parse(imageURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, invalid("imageUrl must be an http(s) url")
		}
	}

	sub := &model.Submission{
		SubmittedBy: caller.ID,
		Name:        name,
		Description: description,
		Lat:         lat,
		Lng:         lng,
		ImageURL:    imageURL,
		Status:      model.SubmissionPending,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *InboxService) ListPending(ctx context.Context, caller *model.User) ([]model.Submission, error) {
	return s.ListByStatus(ctx, caller, model.SubmissionPending)
}

// ListByStatus 管理员审计视图
func (s *InboxService) ListByStatus(ctx context.Context, caller *model.User, status model.SubmissionStatus) ([]model.Submission, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	return s.submissions.ListByStatus(ctx, status)
}

func (s *InboxService) ListMine(ctx context.Context, caller *model.User) ([]model.Submission, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return s.submissions.ListBySubmitter(ctx, caller.ID)
}

func (s *InboxService) Approve(ctx context.Context, caller *model.User, id uint64) (*model.Submission, error) {
	return s.resolve(ctx, caller, id, model.SubmissionApproved)
}

func (s *InboxService) Reject(ctx context.Context, caller *model.User, id uint64) (*model.Submission, error) {
	return s.resolve(ctx, caller, id, model.SubmissionRejected)
}

// resolve 每个提交只会被处理一次，重复处理返回 ErrConflict
func (s *InboxService) resolve(ctx context.Context, caller *model.User, id uint64, status model.SubmissionStatus) (*model.Submission, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	sub, err := s.submissions.Resolve(ctx, id, status, caller.ID, s.now())
	if err != nil {
		return nil, translate(err, "submission")
	}
	s.metrics.IncSubmissionResolved(string(status))
	s.log.Info().Uint64("admin_id", caller.ID).Uint64("submission_id", id).Str("status", string(status)).Msg("submission resolved")
	s.notify(ctx, sub)
	return sub, nil
}

// notify 尽力而为，失败只记日志
func (s *InboxService) notify(ctx context.Context, sub *model.Submission) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		to, err := s.users.FindByID(ctx, sub.SubmittedBy)
		if err != nil {
			s.log.Warn().Err(err).Uint64("submission_id", sub.ID).Msg("notify: load submitter")
			return
		}
		if err = s.notifier.NotifyResolution(ctx, to, sub); err != nil {
			s.log.Warn().Err(err).Uint64("submission_id", sub.ID).Msg("notify: send")
		}
	}()
}

func (s *InboxService) Wait() {
	s.wg.Wait()
}
