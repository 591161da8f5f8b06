package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhaus/backoffice/internal/domain"
)

func newRunner(t *testing.T, flows ...*Flow) *Runner {
	t.Helper()
	r := NewRunner(NewMemSessions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, f := range flows {
		r.Register(f)
	}
	return r
}

// surveyFlow is a plain three-question flow used by the generic tests.
func surveyFlow(finished *map[string]any) *Flow {
	return &Flow{
		Name: "survey",
		Steps: []Step{
			{
				Key:      "color",
				Prompt:   func(*Session) string { return "Favourite color?" },
				Validate: validateNonEmpty("color"),
			},
			{
				Key:      "count",
				Prompt:   func(*Session) string { return "How many?" },
				Validate: validateIntAtLeast("count", 1),
			},
			{
				Key:      "sure",
				Prompt:   func(*Session) string { return "Sure? (yes/no)" },
				Validate: validateYesNo,
			},
		},
		OnFinish: func(_ context.Context, s *Session) (string, error) {
			*finished = s.Answers
			return "done", nil
		},
	}
}

func TestRunner_WalksStepsInOrder(t *testing.T) {
	var answers map[string]any
	r := newRunner(t, surveyFlow(&answers))
	ctx := context.Background()

	res, err := r.Start(ctx, 1, "survey")
	require.NoError(t, err)
	assert.Equal(t, "Favourite color?", res.Prompt)

	res, err = r.Input(ctx, 1, "red")
	require.NoError(t, err)
	assert.Equal(t, "How many?", res.Prompt)

	res, err = r.Input(ctx, 1, "3")
	require.NoError(t, err)
	assert.Equal(t, "Sure? (yes/no)", res.Prompt)

	res, err = r.Input(ctx, 1, "yes")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, "done", res.Prompt)

	assert.Equal(t, map[string]any{"color": "red", "count": 3, "sure": true}, answers)
}

func TestRunner_InvalidInputRepromptsWithoutAdvancing(t *testing.T) {
	var answers map[string]any
	r := newRunner(t, surveyFlow(&answers))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, "survey")
	require.NoError(t, err)
	_, err = r.Input(ctx, 1, "red")
	require.NoError(t, err)

	res, err := r.Input(ctx, 1, "not-a-number")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Invalid)
	assert.Equal(t, "How many?", res.Prompt, "step must not advance on invalid input")

	res, err = r.Input(ctx, 1, "5")
	require.NoError(t, err)
	assert.Equal(t, "Sure? (yes/no)", res.Prompt)
}

func TestRunner_InputWithoutSession(t *testing.T) {
	r := newRunner(t)

	_, err := r.Input(context.Background(), 1, "hello")
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestRunner_Cancel(t *testing.T) {
	var answers map[string]any
	r := newRunner(t, surveyFlow(&answers))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, "survey")
	require.NoError(t, err)
	require.NoError(t, r.Cancel(ctx, 1))

	_, err = r.Input(ctx, 1, "red")
	require.Error(t, err)
}

func TestRunner_SessionsAreIndependentPerUser(t *testing.T) {
	var answers map[string]any
	r := newRunner(t, surveyFlow(&answers))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, "survey")
	require.NoError(t, err)
	_, err = r.Start(ctx, 2, "survey")
	require.NoError(t, err)

	_, err = r.Input(ctx, 1, "red")
	require.NoError(t, err)

	// User 2 is still on the first question.
	res, err := r.Input(ctx, 2, "blue")
	require.NoError(t, err)
	assert.Equal(t, "How many?", res.Prompt)
}

type fakeCatalog struct {
	ranks map[string]int
	packs map[string]domain.RewardPack
	fail  error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{ranks: make(map[string]int), packs: make(map[string]domain.RewardPack)}
}

func (f *fakeCatalog) CreateRank(_ context.Context, name string, minPoints int, _ string, bonusDays int, packID *uuid.UUID) (*domain.Rank, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.ranks[name] = minPoints
	r := &domain.Rank{ID: uuid.New(), Name: name, MinPoints: minPoints, BonusDays: bonusDays, RewardPackID: packID}
	return r, nil
}

func (f *fakeCatalog) PackByName(_ context.Context, name string) (*domain.RewardPack, error) {
	p, ok := f.packs[name]
	if !ok {
		return nil, domain.ErrNotFound("pack", name)
	}
	return &p, nil
}

func (f *fakeCatalog) CreatePack(_ context.Context, name string) (*domain.RewardPack, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	p := domain.RewardPack{ID: uuid.New(), Name: name}
	f.packs[name] = p
	return &p, nil
}

func TestRankBuilder_SkipsVIPDaysOnNo(t *testing.T) {
	catalog := newFakeCatalog()
	var finished *Session
	flow := NewRankBuilderFlow(catalog)
	inner := flow.OnFinish
	flow.OnFinish = func(ctx context.Context, s *Session) (string, error) {
		finished = s
		return inner(ctx, s)
	}
	r := newRunner(t, flow)
	ctx := context.Background()

	_, err := r.Start(ctx, 1, FlowRankBuilder)
	require.NoError(t, err)
	_, err = r.Input(ctx, 1, "Bronze")
	require.NoError(t, err)
	_, err = r.Input(ctx, 1, "100")
	require.NoError(t, err)

	res, err := r.Input(ctx, 1, "no")
	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "pack", "vip day count must be skipped after a no")

	res, err = r.Input(ctx, 1, "none")
	require.NoError(t, err)
	assert.True(t, res.Done)

	require.NotNil(t, finished)
	_, asked := finished.Answer("vip_days")
	assert.False(t, asked, "skipped step must not appear in the answers")
	assert.Equal(t, 100, catalog.ranks["Bronze"])
}

func TestRankBuilder_AsksVIPDaysOnYes(t *testing.T) {
	catalog := newFakeCatalog()
	r := newRunner(t, NewRankBuilderFlow(catalog))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, FlowRankBuilder)
	require.NoError(t, err)
	_, err = r.Input(ctx, 1, "Gold")
	require.NoError(t, err)
	_, err = r.Input(ctx, 1, "500")
	require.NoError(t, err)

	res, err := r.Input(ctx, 1, "yes")
	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "VIP days")

	_, err = r.Input(ctx, 1, "7")
	require.NoError(t, err)
	res, err = r.Input(ctx, 1, "none")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Contains(t, res.Prompt, "Gold")
}

func TestRankBuilder_UnknownPackAbortsFlow(t *testing.T) {
	catalog := newFakeCatalog()
	r := newRunner(t, NewRankBuilderFlow(catalog))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, FlowRankBuilder)
	require.NoError(t, err)
	for _, input := range []string{"Gold", "500", "no"} {
		_, err = r.Input(ctx, 1, input)
		require.NoError(t, err)
	}

	_, err = r.Input(ctx, 1, "missing-pack")
	require.Error(t, err)

	// The session is gone; further input has nothing to feed.
	_, err = r.Input(ctx, 1, "anything")
	require.Error(t, err)
}

func TestNestedFlow_ResumesOuterSession(t *testing.T) {
	catalog := newFakeCatalog()
	rankFlow := NewRankBuilderFlow(catalog)
	packFlow := NewPackBuilderFlow(catalog)
	r := newRunner(t, rankFlow, packFlow)
	ctx := context.Background()

	// Walk the rank builder up to the pack question.
	_, err := r.Start(ctx, 1, FlowRankBuilder)
	require.NoError(t, err)
	for _, input := range []string{"Gold", "500", "no"} {
		_, err = r.Input(ctx, 1, input)
		require.NoError(t, err)
	}

	// The pack does not exist yet; jump into the pack builder mid-flow.
	res, err := r.Start(ctx, 1, FlowPackBuilder)
	require.NoError(t, err)
	assert.Equal(t, "Pack name?", res.Prompt)

	_, err = r.Input(ctx, 1, "launch")
	require.NoError(t, err)
	res, err = r.Input(ctx, 1, "yes")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.True(t, strings.Contains(res.Prompt, "created"), "inner completion message expected")
	assert.True(t, strings.Contains(res.Prompt, "pack"), "outer prompt should resume")

	// Finish the outer rank builder with the freshly created pack.
	res, err = r.Input(ctx, 1, "launch")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Contains(t, res.Prompt, "Gold")
	assert.Equal(t, 500, catalog.ranks["Gold"])
}

func TestRunner_StartSameFlowTwiceConflicts(t *testing.T) {
	catalog := newFakeCatalog()
	r := newRunner(t, NewRankBuilderFlow(catalog))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, FlowRankBuilder)
	require.NoError(t, err)

	_, err = r.Start(ctx, 1, FlowRankBuilder)
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestRunner_OnFinishErrorSurfaces(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.fail = errors.New("store down")
	r := newRunner(t, NewPackBuilderFlow(catalog))
	ctx := context.Background()

	_, err := r.Start(ctx, 1, FlowPackBuilder)
	require.NoError(t, err)
	_, err = r.Input(ctx, 1, "launch")
	require.NoError(t, err)

	_, err = r.Input(ctx, 1, "yes")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "store down") || errors.Is(err, catalog.fail), fmt.Sprintf("unexpected error %v", err))
}
