package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"codearena/internal/domain"
	"codearena/internal/listquery"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByAuth[provider+"|"+subject]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthProvider = provider
	user.AuthSubject = subject
	m.usersByID[id] = user
	m.usersByAuth[provider+"|"+subject] = id
	return nil
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerifiedAt = &at
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateOTP(_ context.Context, id, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OtpCodeHash = codeHash
	user.OtpExpiresAt = &expiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id string, role domain.Role, schoolID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	user.SchoolID = schoolID
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, q listquery.Query) ([]domain.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []domain.User
	for _, u := range m.usersByID {
		users = append(users, u)
	}
	return users, len(users), nil
}

type mockProjectRepo struct {
	projects map[string]domain.Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]domain.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, p domain.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProjectRepo) UpdateDraft(_ context.Context, p domain.Project) error {
	stored, ok := m.projects[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.CategoryID = p.CategoryID
	stored.Title = p.Title
	stored.Summary = p.Summary
	stored.RepoURL = p.RepoURL
	stored.DemoURL = p.DemoURL
	stored.UpdatedAt = p.UpdatedAt
	m.projects[p.ID] = stored
	return nil
}

func (m *mockProjectRepo) MarkSubmitted(_ context.Context, id string, at time.Time) error {
	p, ok := m.projects[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = domain.ProjectSubmitted
	p.SubmittedAt = &at
	p.UpdatedAt = at
	m.projects[id] = p
	return nil
}

func (m *mockProjectRepo) Review(_ context.Context, id string, status domain.ProjectStatus, reviewerID, note string, at time.Time) error {
	p, ok := m.projects[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = status
	p.ReviewedBy = reviewerID
	p.ReviewedAt = &at
	p.ReviewNote = note
	p.UpdatedAt = at
	m.projects[id] = p
	return nil
}

func (m *mockProjectRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.Project, error) {
	var projects []domain.Project
	for _, p := range m.projects {
		if p.AuthorID == authorID {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func (m *mockProjectRepo) List(_ context.Context, q listquery.Query) ([]domain.Project, int, error) {
	var projects []domain.Project
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	return projects, len(projects), nil
}

type mockCompetitionRepo struct {
	competitions map[string]domain.Competition
}

func newMockCompetitionRepo() *mockCompetitionRepo {
	return &mockCompetitionRepo{competitions: make(map[string]domain.Competition)}
}

func (m *mockCompetitionRepo) Create(_ context.Context, c domain.Competition) error {
	m.competitions[c.ID] = c
	return nil
}

func (m *mockCompetitionRepo) GetByID(_ context.Context, id string) (domain.Competition, error) {
	c, ok := m.competitions[id]
	if !ok {
		return domain.Competition{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCompetitionRepo) Update(_ context.Context, c domain.Competition) error {
	if _, ok := m.competitions[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.competitions[c.ID] = c
	return nil
}

func (m *mockCompetitionRepo) UpdateStatus(_ context.Context, id string, status domain.CompetitionStatus) error {
	c, ok := m.competitions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = status
	m.competitions[id] = c
	return nil
}

func (m *mockCompetitionRepo) List(_ context.Context, q listquery.Query) ([]domain.Competition, int, error) {
	var competitions []domain.Competition
	for _, c := range m.competitions {
		competitions = append(competitions, c)
	}
	return competitions, len(competitions), nil
}

type voteKey struct{ projectID, voterID string }

type mockVoteRepo struct {
	votes      map[voteKey]domain.Vote
	aggregates []domain.LeaderboardEntry
}

func newMockVoteRepo() *mockVoteRepo {
	return &mockVoteRepo{votes: make(map[voteKey]domain.Vote)}
}

func (m *mockVoteRepo) Upsert(_ context.Context, v domain.Vote) error {
	m.votes[voteKey{v.ProjectID, v.VoterID}] = v
	return nil
}

func (m *mockVoteRepo) Get(_ context.Context, projectID, voterID string) (domain.Vote, error) {
	v, ok := m.votes[voteKey{projectID, voterID}]
	if !ok {
		return domain.Vote{}, pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockVoteRepo) Delete(_ context.Context, projectID, voterID string) error {
	delete(m.votes, voteKey{projectID, voterID})
	return nil
}

func (m *mockVoteRepo) AggregateByCompetition(_ context.Context, competitionID string) ([]domain.LeaderboardEntry, error) {
	return m.aggregates, nil
}

type sentMail struct {
	to       string
	code     string
	title    string
	approved bool
}

type mockSender struct {
	sent []sentMail
	fail bool
}

func (m *mockSender) SendVerificationOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	if m.fail {
		return errSenderDown
	}
	m.sent = append(m.sent, sentMail{to: toEmail, code: code})
	return nil
}

func (m *mockSender) SendReviewResult(_ context.Context, toEmail, projectTitle string, approved bool, _ string) error {
	if m.fail {
		return errSenderDown
	}
	m.sent = append(m.sent, sentMail{to: toEmail, title: projectTitle, approved: approved})
	return nil
}
