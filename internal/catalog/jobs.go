package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/utils"
)

const (
	jobsPath        = "/jobs"
	DefaultJobLimit = 20
)

type jobItem struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Company        string  `json:"company"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
	URL            string  `json:"url"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Skills         []any   `json:"skills"`
	RequiredSkills []any   `json:"required_skills"`
}

// SearchJobs returns postings for query. Postings without any recognizable
// skill are dropped because they cannot be scored.
func (c *Client) SearchJobs(ctx context.Context, query, city string, limit int) ([]matching.JobPosting, error) {
	if limit <= 0 {
		limit = DefaultJobLimit
	}
	if city == "" {
		city = DefaultCity
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("city", city)
	q.Set("limit", strconv.Itoa(limit))

	var raw any
	if err := c.getJSON(ctx, jobsPath, q, &raw); err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}

	var items []jobItem
	if err := decodeItems(unwrapList(raw, "jobs", "data"), &items); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	jobs := make([]matching.JobPosting, 0, len(items))
	for i, item := range items {
		job := item.posting(i)
		if len(job.RequiredSkills) == 0 {
			c.logger.Debug("skip job without skills", zap.String("job_id", job.ID), zap.String("title", job.Title))
			continue
		}
		jobs = append(jobs, job)
	}

	c.logger.Debug("got jobs from catalog", zap.String("query", query), zap.Int("found", len(items)), zap.Int("usable", len(jobs)))
	return jobs, nil
}

// InferSkillsForRole looks at postings for role and returns the skills they
// ask for most often.
func (c *Client) InferSkillsForRole(ctx context.Context, role string, limit int) ([]string, error) {
	jobs, err := c.SearchJobs(ctx, role, "", DefaultJobLimit)
	if err != nil {
		return nil, err
	}
	return TopSkills(jobs, limit), nil
}

// TopSkills counts how many postings require each skill and returns the
// most frequent ones, ties in first-seen order.
func TopSkills(jobs []matching.JobPosting, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, job := range jobs {
		for _, skill := range job.RequiredSkills {
			if _, ok := counts[skill]; !ok {
				order = append(order, skill)
			}
			counts[skill]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// posting converts the item. pos is the item's position in the response and
// names postings that carry neither an id nor a url.
func (j jobItem) posting(pos int) matching.JobPosting {
	skills := skillNames(j.Skills)
	if len(skills) == 0 {
		skills = skillNames(j.RequiredSkills)
	}
	if len(skills) == 0 {
		skills = ExtractJobSkills(j.Title, j.Description)
	}

	id := firstNonEmpty(j.ID, j.URL)
	if id == "" {
		id = FallbackJobID(pos)
	}

	job := matching.JobPosting{
		ID:             id,
		Title:          orDefault(j.Title, "Unknown Title"),
		Company:        orDefault(j.Company, "Unknown Company"),
		Location:       orDefault(j.Location, DefaultLocation),
		Description:    j.Description,
		URL:            j.URL,
		Lat:            j.Lat,
		Lng:            j.Lng,
		RequiredSkills: utils.Dedupe(skills),
	}
	if job.Lat == 0 && job.Lng == 0 {
		job.Lat, job.Lng = DefaultLat, DefaultLng
	}
	return job
}

// FallbackJobID names the posting at pos when the source gave it no id.
func FallbackJobID(pos int) string {
	return "job-" + strconv.Itoa(pos+1)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
