package training

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillmatch/internal/catalog"
)

type stubSearcher struct {
	trainings []catalog.Training
	err       error
	gotSkills []string
}

func (s *stubSearcher) SearchTrainings(_ context.Context, skills []string, _ int) ([]catalog.Training, error) {
	s.gotSkills = skills
	return s.trainings, s.err
}

func TestRecommendOrdersByRelevance(t *testing.T) {
	searcher := &stubSearcher{trainings: []catalog.Training{
		{ID: "1", Kind: "courses", Title: "Git", CoveredSkills: []string{"git"}},
		{ID: "2", Kind: "courses", Title: "Containers", CoveredSkills: []string{"Docker", "kubernetes"}},
		{ID: "3", Kind: "events", Title: "Docker Day", CoveredSkills: []string{"docker"}, Location: "Makati"},
		{ID: "4", Kind: "seminars", Title: "Docker Night", CoveredSkills: []string{"docker"}, Location: "Taguig City"},
		{ID: "2", Kind: "courses", Title: "Containers (dup)", CoveredSkills: []string{"docker"}},
	}}

	got, err := NewCatalogRecommender(searcher, 0).Recommend(context.Background(), Request{
		SkillGaps: []string{"Docker", "kubernetes", "docker"},
		Location:  "taguig",
		Query:     "devops engineer",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docker", "kubernetes"}, searcher.gotSkills)
	require.Len(t, got, 4)

	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 100.0, got[0].RelevanceScore)
	assert.Equal(t, "Covers 2 of your target skills: docker, kubernetes.", got[0].Why)

	assert.Equal(t, "4", got[1].ID, "location match wins ties")
	assert.Equal(t, "3", got[2].ID)
	assert.Equal(t, 50.0, got[2].RelevanceScore)

	assert.Equal(t, "1", got[3].ID)
	assert.Equal(t, 0.0, got[3].RelevanceScore)
	assert.Equal(t, "Related to devops engineer.", got[3].Why)
}

func TestRecommendFallsBackToQuery(t *testing.T) {
	searcher := &stubSearcher{}

	got, err := NewCatalogRecommender(searcher, 0).Recommend(context.Background(), Request{Query: "  Public Speaking "})
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Equal(t, []string{"public speaking"}, searcher.gotSkills)
}

func TestRecommendLimit(t *testing.T) {
	var trainings []catalog.Training
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		trainings = append(trainings, catalog.Training{ID: id, CoveredSkills: []string{"sql"}})
	}

	got, err := NewCatalogRecommender(&stubSearcher{trainings: trainings}, 0).Recommend(context.Background(), Request{SkillGaps: []string{"sql"}})
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
	assert.Equal(t, "a", got[0].ID)
}

func TestRecommendNoTargets(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("must not be called")}

	got, err := NewCatalogRecommender(searcher, 0).Recommend(context.Background(), Request{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecommendSearchError(t *testing.T) {
	_, err := NewCatalogRecommender(&stubSearcher{err: errors.New("down")}, 0).Recommend(context.Background(), Request{SkillGaps: []string{"go"}})
	require.Error(t, err)
}

func TestRecommendCoversEveryGap(t *testing.T) {
	var trainings []catalog.Training
	for _, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		trainings = append(trainings, catalog.Training{ID: id, Kind: "courses", CoveredSkills: []string{"docker"}})
	}
	trainings = append(trainings, catalog.Training{ID: "k1", Kind: "seminars", CoveredSkills: []string{"kubernetes"}})

	got, err := NewCatalogRecommender(&stubSearcher{trainings: trainings}, 5).Recommend(context.Background(), Request{
		SkillGaps: []string{"docker", "kubernetes"},
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"d1", "d2", "d3", "d4", "k1"}, ids)
	assert.Equal(t, []string{"kubernetes"}, got[4].TargetSkills)
}

func TestRecommendGapCoverageRespectsLimit(t *testing.T) {
	trainings := []catalog.Training{
		{ID: "a", CoveredSkills: []string{"go"}},
		{ID: "b", CoveredSkills: []string{"sql"}},
		{ID: "c", CoveredSkills: []string{"aws"}},
	}

	got, err := NewCatalogRecommender(&stubSearcher{trainings: trainings}, 2).Recommend(context.Background(), Request{
		SkillGaps: []string{"aws", "sql", "go"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestWhyWithoutQuery(t *testing.T) {
	assert.Equal(t, "Related to your learning goals.", why(nil, "  "))
	assert.Equal(t, "Related to rust.", why(nil, "rust"))
}
