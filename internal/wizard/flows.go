package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/clubhaus/backoffice/internal/domain"
)

// Flow names registered by the back office.
const (
	FlowRankBuilder = "rank_builder"
	FlowPackBuilder = "pack_builder"
)

// RankCreator is the catalog surface the rank builder needs.
type RankCreator interface {
	CreateRank(ctx context.Context, name string, minPoints int, rewardNote string, bonusDays int, packID *uuid.UUID) (*domain.Rank, error)
	PackByName(ctx context.Context, name string) (*domain.RewardPack, error)
}

// PackCreator is the catalog surface the pack builder needs.
type PackCreator interface {
	CreatePack(ctx context.Context, name string) (*domain.RewardPack, error)
}

func validateNonEmpty(field string) func(string) (any, error) {
	return func(input string) (any, error) {
		v := strings.TrimSpace(input)
		if v == "" {
			return nil, fmt.Errorf("%s must not be empty", field)
		}
		return v, nil
	}
}

func validateIntAtLeast(field string, min int) func(string) (any, error) {
	return func(input string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", field)
		}
		if n < min {
			return nil, fmt.Errorf("%s must be at least %d", field, min)
		}
		return n, nil
	}
}

func validateYesNo(input string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return nil, fmt.Errorf("answer yes or no")
}

// NewRankBuilderFlow builds the admin dialogue that creates a rank: name,
// threshold, whether the rank grants VIP days (the day-count step is
// skipped on "no"), and an optional reward pack by name.
func NewRankBuilderFlow(catalog RankCreator) *Flow {
	return &Flow{
		Name: FlowRankBuilder,
		Steps: []Step{
			{
				Key:      "name",
				Prompt:   func(*Session) string { return "Rank name?" },
				Validate: validateNonEmpty("name"),
			},
			{
				Key:      "min_points",
				Prompt:   func(*Session) string { return "Points required to reach it?" },
				Validate: validateIntAtLeast("threshold", 0),
			},
			{
				Key:      "grants_vip",
				Prompt:   func(*Session) string { return "Does this rank grant VIP days? (yes/no)" },
				Validate: validateYesNo,
			},
			{
				Key:      "vip_days",
				Prompt:   func(*Session) string { return "How many VIP days?" },
				Validate: validateIntAtLeast("days", 1),
				Skip:     func(s *Session) bool { return !s.Bool("grants_vip") },
			},
			{
				Key:    "pack",
				Prompt: func(*Session) string { return "Reward pack name, or \"none\"?" },
				Validate: func(input string) (any, error) {
					v := strings.TrimSpace(input)
					if v == "" {
						return nil, fmt.Errorf("pack name must not be empty, use \"none\" to skip")
					}
					return v, nil
				},
			},
		},
		OnFinish: func(ctx context.Context, s *Session) (string, error) {
			name := s.Answers["name"].(string)
			minPoints := s.Answers["min_points"].(int)

			days := 0
			if v, ok := s.Answer("vip_days"); ok {
				days = v.(int)
			}

			var packID *uuid.UUID
			if packName := s.Answers["pack"].(string); !strings.EqualFold(packName, "none") {
				pack, err := catalog.PackByName(ctx, packName)
				if err != nil {
					return "", err
				}
				packID = &pack.ID
			}

			rank, err := catalog.CreateRank(ctx, name, minPoints, "", days, packID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Rank %q created at %d points.", rank.Name, rank.MinPoints), nil
		},
	}
}

// NewPackBuilderFlow builds the dialogue that creates an empty reward
// pack; media is attached afterwards through the catalog endpoints.
func NewPackBuilderFlow(catalog PackCreator) *Flow {
	return &Flow{
		Name: FlowPackBuilder,
		Steps: []Step{
			{
				Key:      "name",
				Prompt:   func(*Session) string { return "Pack name?" },
				Validate: validateNonEmpty("name"),
			},
			{
				Key:      "confirm",
				Prompt:   func(s *Session) string { return fmt.Sprintf("Create pack %q? (yes/no)", s.Answers["name"]) },
				Validate: validateYesNo,
			},
		},
		OnFinish: func(ctx context.Context, s *Session) (string, error) {
			if !s.Bool("confirm") {
				return "Pack creation cancelled.", nil
			}
			pack, err := catalog.CreatePack(ctx, s.Answers["name"].(string))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Pack %q created.", pack.Name), nil
		},
	}
}
