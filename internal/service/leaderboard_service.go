package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"codearena/internal/domain"
	"codearena/internal/repository"
)

const leaderboardCacheTTL = 30 * time.Second

// LeaderboardService calcula el ranking de una competencia a partir de los
// votos agregados. Si hay redis configurado, cachea el resultado en JSON por
// un periodo corto; sin redis recalcula en cada consulta.
type LeaderboardService struct {
	logger *zap.Logger
	votes  repository.VoteRepository
	redis  *redis.Client
	ttl    time.Duration
}

func NewLeaderboardService(logger *zap.Logger, votes repository.VoteRepository, redisClient *redis.Client) *LeaderboardService {
	return &LeaderboardService{
		logger: logger,
		votes:  votes,
		redis:  redisClient,
		ttl:    leaderboardCacheTTL,
	}
}

// Leaderboard devuelve las filas rankeadas de la competencia.
func (s *LeaderboardService) Leaderboard(ctx context.Context, competitionID string) ([]domain.LeaderboardEntry, error) {
	if cached, ok := s.fromCache(ctx, competitionID); ok {
		return cached, nil
	}

	entries, err := s.votes.AggregateByCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	rankEntries(entries)

	s.toCache(ctx, competitionID, entries)
	return entries, nil
}

// InvalidateCache descarta el ranking cacheado; se llama al votar.
func (s *LeaderboardService) InvalidateCache(ctx context.Context, competitionID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, leaderboardKey(competitionID)).Err(); err != nil {
		if s.logger != nil {
			s.logger.Warn("leaderboard cache invalidate failed", zap.Error(err))
		}
	}
}

// rankEntries asigna posiciones 1-based y el promedio sobre filas ya
// ordenadas por el repositorio.
func rankEntries(entries []domain.LeaderboardEntry) {
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].VoteCount > 0 {
			entries[i].AvgScore = float64(entries[i].TotalScore) / float64(entries[i].VoteCount)
		}
	}
}

func (s *LeaderboardService) fromCache(ctx context.Context, competitionID string) ([]domain.LeaderboardEntry, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, leaderboardKey(competitionID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *LeaderboardService) toCache(ctx context.Context, competitionID string, entries []domain.LeaderboardEntry) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, leaderboardKey(competitionID), raw, s.ttl).Err(); err != nil {
		if s.logger != nil {
			s.logger.Warn("leaderboard cache store failed", zap.Error(err))
		}
	}
}

func leaderboardKey(competitionID string) string {
	return "leaderboard:" + competitionID
}
