// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/quizstat/internal/model"
)

// UserFinder resolves users by login.
type UserFinder interface {
	FindUserByLogin(ctx context.Context, login string) (model.User, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	User      model.UserStatistics
	History   []model.NamedTestSample
	TopicName string
	Tests     []model.TestStat
}

// BuildReport loads the user and topic sections selected by cfg. Sections
// whose selector is empty are left blank.
func BuildReport(ctx context.Context, svc *Service, users UserFinder, cfg model.StatsConfig) (Report, error) {
	var report Report
	svc = svc.WithPolicy(cfg.Attempts)
	if cfg.Login != "" {
		user, err := users.FindUserByLogin(ctx, cfg.Login)
		if err != nil {
			return Report{}, fmt.Errorf("failed to find user %q: %w", cfg.Login, err)
		}
		report.User, report.History, err = svc.userReport(ctx, user)
		if err != nil {
			return Report{}, err
		}
	}
	if cfg.TopicID > 0 {
		topic, tests, err := svc.TopicReport(ctx, cfg.TopicID)
		if err != nil {
			return Report{}, err
		}
		report.TopicName = topic.Name
		report.Tests = tests
	}
	return report, nil
}

// HistoryTrend returns per-attempt scores smoothed over window attempts.
func HistoryTrend(history []model.NamedTestSample, window int) []float64 {
	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = float64(s.Average)
	}
	return MovingAverage(values, window)
}
