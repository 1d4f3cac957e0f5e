package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"codearena/internal/domain"
	"codearena/internal/repository"
)

// VoteService aplica las reglas de votacion sobre proyectos aprobados.
type VoteService struct {
	votes        repository.VoteRepository
	projects     repository.ProjectRepository
	competitions repository.CompetitionRepository
	leaderboard  *LeaderboardService
}

func NewVoteService(
	votes repository.VoteRepository,
	projects repository.ProjectRepository,
	competitions repository.CompetitionRepository,
	leaderboard *LeaderboardService,
) *VoteService {
	return &VoteService{
		votes:        votes,
		projects:     projects,
		competitions: competitions,
		leaderboard:  leaderboard,
	}
}

var (
	ErrVoteScoreOutOfRange = errors.New("vote score out of range")
	ErrOwnProjectVote      = errors.New("cannot vote own project")
	ErrProjectNotVotable   = errors.New("project not open to votes")
	ErrVotingClosed        = errors.New("competition not in voting")
	ErrVoteNotFound        = errors.New("vote not found")
)

// Cast registra (o actualiza) el voto del usuario. Solo durante la fase de
// votacion, solo proyectos aprobados y nunca el proyecto propio.
func (s *VoteService) Cast(ctx context.Context, voter domain.User, projectID string, score int) (domain.Vote, error) {
	if score < domain.VoteScoreMin || score > domain.VoteScoreMax {
		return domain.Vote{}, ErrVoteScoreOutOfRange
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vote{}, ErrProjectNotFound
		}
		return domain.Vote{}, err
	}
	if project.AuthorID == voter.ID {
		return domain.Vote{}, ErrOwnProjectVote
	}
	if project.Status != domain.ProjectApproved {
		return domain.Vote{}, ErrProjectNotVotable
	}

	if err := s.requireVoting(ctx, project.CompetitionID); err != nil {
		return domain.Vote{}, err
	}

	vote := domain.Vote{
		ProjectID: project.ID,
		VoterID:   voter.ID,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.votes.Upsert(ctx, vote); err != nil {
		return domain.Vote{}, err
	}
	s.invalidateLeaderboard(ctx, project.CompetitionID)
	return vote, nil
}

// Remove quita el voto del usuario mientras la votacion siga abierta.
func (s *VoteService) Remove(ctx context.Context, voterID, projectID string) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		return err
	}
	if err := s.requireVoting(ctx, project.CompetitionID); err != nil {
		return err
	}
	if _, err := s.votes.Get(ctx, projectID, voterID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVoteNotFound
		}
		return err
	}
	if err := s.votes.Delete(ctx, projectID, voterID); err != nil {
		return err
	}
	s.invalidateLeaderboard(ctx, project.CompetitionID)
	return nil
}

func (s *VoteService) requireVoting(ctx context.Context, competitionID string) error {
	competition, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCompetitionNotFound
		}
		return err
	}
	if competition.Status != domain.CompetitionVoting {
		return ErrVotingClosed
	}
	return nil
}

func (s *VoteService) invalidateLeaderboard(ctx context.Context, competitionID string) {
	if s.leaderboard != nil {
		s.leaderboard.InvalidateCache(ctx, competitionID)
	}
}
