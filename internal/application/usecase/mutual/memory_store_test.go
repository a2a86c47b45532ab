package mutual

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
)

var errStoreDown = errors.New("connection refused")

type queuedEmail struct {
	template entity.EmailTemplateType
	to       string
}

// memoryStore is an in-memory registry, ledger, directory, transactor and email queue.
// A transaction snapshots the state and restores it when fn fails.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	groups  map[uuid.UUID]*entity.MutualGroup
	invites map[uuid.UUID]*entity.MutualInvite
	users   map[uuid.UUID]*entity.UserDisplayInfo
	emails  []queuedEmail
	usage   []*entity.LowUsageCandidate

	failCreateGroup error
	failCreateBatch error
	failRespond     error
	failPromote     error
	failCount       error
	failEmail       error

	promoteCalls  int
	lastMonthSeen time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		groups:  make(map[uuid.UUID]*entity.MutualGroup),
		invites: make(map[uuid.UUID]*entity.MutualInvite),
		users:   make(map[uuid.UUID]*entity.UserDisplayInfo),
	}
}

func (s *memoryStore) addUser(name, country string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &entity.UserDisplayInfo{
		ID:      id,
		Name:    name,
		Email:   name + "@example.com",
		Country: country,
	}
	return id
}

func (s *memoryStore) group(id uuid.UUID) *entity.MutualGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil
	}
	cp := *g
	return &cp
}

func (s *memoryStore) invite(id uuid.UUID) *entity.MutualInvite {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.invites[id]
	if !ok {
		return nil
	}
	return copyInvite(i)
}

func (s *memoryStore) inviteFor(groupID, userID uuid.UUID) *entity.MutualInvite {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invites {
		if i.GroupID == groupID && i.UserID == userID {
			return copyInvite(i)
		}
	}
	return nil
}

func (s *memoryStore) emailCount(template entity.EmailTemplateType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.emails {
		if e.template == template {
			n++
		}
	}
	return n
}

func copyInvite(i *entity.MutualInvite) *entity.MutualInvite {
	cp := *i
	if i.RespondedAt != nil {
		t := *i.RespondedAt
		cp.RespondedAt = &t
	}
	return &cp
}

// Transactor

func (s *memoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	groups := make(map[uuid.UUID]*entity.MutualGroup, len(s.groups))
	for k, v := range s.groups {
		cp := *v
		groups[k] = &cp
	}
	invites := make(map[uuid.UUID]*entity.MutualInvite, len(s.invites))
	for k, v := range s.invites {
		invites[k] = copyInvite(v)
	}
	emails := append([]queuedEmail(nil), s.emails...)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.groups, s.invites, s.emails = groups, invites, emails
		s.mu.Unlock()
		return err
	}
	return nil
}

// GroupRegistry

func (s *memoryStore) Create(_ context.Context, group *entity.MutualGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateGroup != nil {
		return s.failCreateGroup
	}
	cp := *group
	s.groups[group.ID] = &cp
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*entity.MutualGroup, error) {
	return s.group(id), nil
}

func (s *memoryStore) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*entity.MutualGroup, error) {
	return s.group(id), nil
}

func (s *memoryStore) PromoteToActive(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promoteCalls++
	if s.failPromote != nil {
		return false, s.failPromote
	}
	g, ok := s.groups[id]
	if !ok || g.Status != entity.MutualGroupStatusForming {
		return false, nil
	}
	g.Status = entity.MutualGroupStatusActive
	return true, nil
}

func (s *memoryStore) MarkStalled(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok || g.Status != entity.MutualGroupStatusForming {
		return false, nil
	}
	g.Status = entity.MutualGroupStatusStalled
	return true, nil
}

func (s *memoryStore) ListWithCounts(_ context.Context) ([]*entity.MutualGroupSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := make([]*entity.MutualGroupSummary, 0, len(s.groups))
	for _, g := range s.groups {
		cp := *g
		summaries = append(summaries, &entity.MutualGroupSummary{Group: &cp, Tally: s.tally(g.ID)})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Group.CreatedAt.After(summaries[j].Group.CreatedAt)
	})
	return summaries, nil
}

// InvitationLedger

func (s *memoryStore) CreateBatch(_ context.Context, invites []*entity.MutualInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, i := range invites {
		if s.failCreateBatch != nil && n == len(invites)-1 {
			return s.failCreateBatch
		}
		s.invites[i.ID] = copyInvite(i)
	}
	return nil
}

func (s *memoryStore) CountPendingByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCount != nil {
		return 0, s.failCount
	}
	n := 0
	for _, i := range s.invites {
		if i.UserID == userID && i.IsPending() && s.groupStatus(i.GroupID) == entity.MutualGroupStatusForming {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.MutualInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.MutualInvite
	for _, i := range s.invites {
		if i.UserID == userID {
			result = append(result, copyInvite(i))
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].SentAt.After(result[b].SentAt) })
	return result, nil
}

func (s *memoryStore) FindByIDForUser(_ context.Context, inviteID, userID uuid.UUID) (*entity.MutualInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.invites[inviteID]
	if !ok || i.UserID != userID {
		return nil, nil
	}
	return copyInvite(i), nil
}

func (s *memoryStore) Respond(_ context.Context, input adapter.RespondInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRespond != nil {
		return false, s.failRespond
	}
	i, ok := s.invites[input.InviteID]
	if !ok || i.UserID != input.UserID || !i.IsPending() {
		return false, nil
	}
	respondedAt := input.RespondedAt
	i.InviteStatus = input.InviteStatus
	i.MemberStatus = input.MemberStatus
	i.RespondedAt = &respondedAt
	return true, nil
}

// groupStatus must be called with mu held.
func (s *memoryStore) groupStatus(id uuid.UUID) entity.MutualGroupStatus {
	if g, ok := s.groups[id]; ok {
		return g.Status
	}
	return ""
}

func (s *memoryStore) CountByGroup(_ context.Context, groupID uuid.UUID) (entity.InviteTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally(groupID), nil
}

func (s *memoryStore) tally(groupID uuid.UUID) entity.InviteTally {
	var t entity.InviteTally
	for _, i := range s.invites {
		if i.GroupID != groupID {
			continue
		}
		t.Total++
		switch i.InviteStatus {
		case entity.MutualInviteStatusAccepted:
			t.Accepted++
		case entity.MutualInviteStatusDeclined:
			t.Declined++
		}
	}
	return t
}

func (s *memoryStore) FindGroupMembers(_ context.Context, groupID uuid.UUID) ([]*entity.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []*entity.GroupMember
	for _, i := range s.invites {
		if i.GroupID != groupID {
			continue
		}
		m := &entity.GroupMember{
			InviteID:     i.ID,
			UserID:       i.UserID,
			InviteStatus: i.InviteStatus,
			MemberStatus: i.MemberStatus,
			RespondedAt:  i.RespondedAt,
		}
		if u, ok := s.users[i.UserID]; ok {
			m.Name, m.Email, m.Country = u.Name, u.Email, u.Country
		}
		members = append(members, m)
	}
	sort.Slice(members, func(a, b int) bool { return members[a].Name < members[b].Name })
	return members, nil
}

func (s *memoryStore) FindActiveConnection(_ context.Context, userID uuid.UUID) (*entity.MutualInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *entity.MutualInvite
	for _, i := range s.invites {
		if i.UserID != userID || !i.IsActiveMember() || i.RespondedAt == nil || s.groupStatus(i.GroupID) == entity.MutualGroupStatusStalled {
			continue
		}
		if latest == nil || i.RespondedAt.After(*latest.RespondedAt) {
			latest = i
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyInvite(latest), nil
}

func (s *memoryStore) FindUsersWithActiveMembership(_ context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	found := make(map[uuid.UUID]bool)
	var result []uuid.UUID
	for _, i := range s.invites {
		if wanted[i.UserID] && i.IsActiveMember() && !found[i.UserID] && s.groupStatus(i.GroupID) != entity.MutualGroupStatusStalled {
			found[i.UserID] = true
			result = append(result, i.UserID)
		}
	}
	return result, nil
}

// SubscriberDirectory

func (s *memoryStore) FindLowUsageSubscribers(_ context.Context, thresholdMinutes int, monthStart time.Time) ([]*entity.LowUsageCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMonthSeen = monthStart
	var result []*entity.LowUsageCandidate
	for _, c := range s.usage {
		if c.TotalMinutes < thresholdMinutes {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *memoryStore) FindDisplayInfo(_ context.Context, userIDs []uuid.UUID) ([]*entity.UserDisplayInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.UserDisplayInfo
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			cp := *u
			result = append(result, &cp)
		}
	}
	return result, nil
}

// EmailService

func (s *memoryStore) QueueMutualInvitationEmail(_ context.Context, input adapter.QueueMutualInvitationInput) error {
	return s.queue(entity.TemplateMutualInvitation, input.UserEmail)
}

func (s *memoryStore) QueueGroupActiveEmail(_ context.Context, input adapter.QueueGroupActiveInput) error {
	return s.queue(entity.TemplateMutualGroupActive, input.UserEmail)
}

func (s *memoryStore) queue(template entity.EmailTemplateType, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failEmail != nil {
		return s.failEmail
	}
	s.emails = append(s.emails, queuedEmail{template: template, to: to})
	return nil
}

// memoryCache is a NotificationCache backed by a map.
type memoryCache struct {
	mu          sync.Mutex
	counts      map[uuid.UUID]int
	generations map[uuid.UUID]int64
	invalidated []uuid.UUID
	failGet     error
	sets        int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		counts:      make(map[uuid.UUID]int),
		generations: make(map[uuid.UUID]int64),
	}
}

func (c *memoryCache) Get(_ context.Context, userID uuid.UUID) (adapter.CachedCount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return adapter.CachedCount{}, c.failGet
	}
	n, ok := c.counts[userID]
	return adapter.CachedCount{Count: n, Hit: ok, Generation: c.generations[userID]}, nil
}

func (c *memoryCache) Set(_ context.Context, userID uuid.UUID, count int, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != generation {
		return nil
	}
	c.sets++
	c.counts[userID] = count
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userIDs ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.counts, id)
		c.generations[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

// countingMetrics records MutualMetrics calls.
type countingMetrics struct {
	created  int
	invites  int
	accepted int
	declined int
	promoted int
	stalled  int
}

func (m *countingMetrics) GroupCreated(_ string, invites int) {
	m.created++
	m.invites += invites
}

func (m *countingMetrics) InviteResponded(accepted bool) {
	if accepted {
		m.accepted++
		return
	}
	m.declined++
}

func (m *countingMetrics) GroupPromoted(string) { m.promoted++ }
func (m *countingMetrics) GroupStalled()        { m.stalled++ }
