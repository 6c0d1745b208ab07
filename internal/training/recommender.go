// Package training recommends trainings that close a candidate's skill gaps.
package training

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spigell/skillmatch/internal/catalog"
	"github.com/spigell/skillmatch/internal/matching"
)

const (
	DefaultLimit       = 5
	maxWhySkills       = 3
	noOverlapWhy       = "Related to your learning goals."
	defaultSearchLimit = catalog.DefaultTrainingLimit
)

// Request describes what trainings should cover.
type Request struct {
	SkillGaps   []string
	Location    string
	Proficiency map[string]int
	Query       string
}

// Match is a recommended training with its relevance to the request.
type Match struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Provider       string   `json:"provider"`
	Kind           string   `json:"kind,omitempty"`
	Mode           string   `json:"mode"`
	Location       string   `json:"location"`
	Date           string   `json:"date,omitempty"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	RelevanceScore float64  `json:"relevanceScore"`
	TargetSkills   []string `json:"targetSkills"`
	Why            string   `json:"why"`
}

type Recommender interface {
	Recommend(ctx context.Context, req Request) ([]Match, error)
}

// Searcher finds trainings covering any of the given skills.
type Searcher interface {
	SearchTrainings(ctx context.Context, skills []string, limit int) ([]catalog.Training, error)
}

// CatalogRecommender scores catalog trainings by how many target skills
// they cover.
type CatalogRecommender struct {
	searcher Searcher
	limit    int
}

func NewCatalogRecommender(searcher Searcher, limit int) *CatalogRecommender {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &CatalogRecommender{searcher: searcher, limit: limit}
}

func (r *CatalogRecommender) Recommend(ctx context.Context, req Request) ([]Match, error) {
	targets := targetSkills(req)
	if len(targets) == 0 {
		return nil, nil
	}

	found, err := r.searcher.SearchTrainings(ctx, targets, defaultSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search trainings: %w", err)
	}

	matches := make([]Match, 0, len(found))
	seen := make(map[string]struct{}, len(found))
	for _, t := range found {
		key := t.Kind + "/" + t.ID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		matches = append(matches, score(t, targets, req.Query))
	}

	location := strings.ToLower(strings.TrimSpace(req.Location))
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].RelevanceScore != matches[j].RelevanceScore {
			return matches[i].RelevanceScore > matches[j].RelevanceScore
		}
		return nearby(matches[i], location) && !nearby(matches[j], location)
	})

	return pick(matches, targets, r.limit), nil
}

// pick keeps up to limit matches from the ranked list. The best match for
// each target skill not yet covered is taken first, in target order; the
// remaining slots go to the highest relevance. Ranked order is kept.
func pick(ranked []Match, targets []string, limit int) []Match {
	if len(ranked) <= limit {
		return ranked
	}

	chosen := make([]bool, len(ranked))
	covered := make(map[string]struct{}, len(targets))
	n := 0
	for _, target := range targets {
		if n == limit {
			break
		}
		if _, ok := covered[target]; ok {
			continue
		}
		for i, m := range ranked {
			if chosen[i] || !slices.Contains(m.TargetSkills, target) {
				continue
			}
			chosen[i] = true
			n++
			for _, s := range m.TargetSkills {
				covered[s] = struct{}{}
			}
			break
		}
	}

	for i := range ranked {
		if n == limit {
			break
		}
		if !chosen[i] {
			chosen[i] = true
			n++
		}
	}

	out := make([]Match, 0, limit)
	for i, m := range ranked {
		if chosen[i] {
			out = append(out, m)
		}
	}
	return out
}

func targetSkills(req Request) []string {
	seen := make(map[string]struct{}, len(req.SkillGaps))
	var out []string
	for _, s := range req.SkillGaps {
		s = matching.NormalizeSkill(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		if q := matching.NormalizeSkill(req.Query); q != "" {
			out = []string{q}
		}
	}
	return out
}

func score(t catalog.Training, targets []string, query string) Match {
	covered := make(map[string]struct{}, len(t.CoveredSkills))
	for _, s := range t.CoveredSkills {
		covered[matching.NormalizeSkill(s)] = struct{}{}
	}

	var overlap []string
	for _, s := range targets {
		if _, ok := covered[s]; ok {
			overlap = append(overlap, s)
		}
	}

	return Match{
		ID:             t.ID,
		Title:          t.Title,
		Provider:       t.Provider,
		Kind:           t.Kind,
		Mode:           t.Mode,
		Location:       t.Location,
		Date:           t.Date,
		Lat:            t.Lat,
		Lng:            t.Lng,
		RelevanceScore: float64(len(overlap)) / float64(len(targets)) * 100,
		TargetSkills:   overlap,
		Why:            why(overlap, query),
	}
}

func why(overlap []string, query string) string {
	if len(overlap) == 0 {
		if q := strings.TrimSpace(query); q != "" {
			return fmt.Sprintf("Related to %s.", q)
		}
		return noOverlapWhy
	}
	shown := overlap
	if len(shown) > maxWhySkills {
		shown = shown[:maxWhySkills]
	}
	return fmt.Sprintf("Covers %d of your target skills: %s.", len(overlap), strings.Join(shown, ", "))
}

func nearby(m Match, location string) bool {
	if location == "" {
		return false
	}
	return strings.Contains(strings.ToLower(m.Location), location)
}
