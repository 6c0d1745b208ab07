package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillmatch/internal/utils"
)

const DefaultTrainingLimit = 10

// TrainingKinds are the catalog endpoints that serve trainings.
var TrainingKinds = []string{"courses", "events", "seminars"}

// Training is a course, event or seminar offered by the catalog.
type Training struct {
	ID            string
	Kind          string
	Title         string
	Provider      string
	Description   string
	Mode          string
	Location      string
	Date          string
	Lat           float64
	Lng           float64
	CoveredSkills []string
}

type trainingItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Provider    string  `json:"provider"`
	Organizer   string  `json:"organizer"`
	Institution string  `json:"institution"`
	Description string  `json:"description"`
	Mode        string  `json:"mode"`
	Type        string  `json:"type"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	ScheduledAt string  `json:"scheduled_at"`
	StartDate   string  `json:"start_date"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Skills      []any   `json:"skills"`
	Tags        []any   `json:"tags"`
}

// SearchTrainings queries every training endpoint concurrently. A failing
// endpoint is logged and skipped; an error is returned only when all fail.
func (c *Client) SearchTrainings(ctx context.Context, skills []string, limit int) ([]Training, error) {
	if limit <= 0 {
		limit = DefaultTrainingLimit
	}

	q := url.Values{}
	q.Set("skills", strings.Join(skills, ","))
	q.Set("limit", strconv.Itoa(limit))

	results := make([][]Training, len(TrainingKinds))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range TrainingKinds {
		g.Go(func() error {
			trainings, err := c.searchKind(gctx, kind, q)
			if err != nil {
				c.logger.Warn("skip training endpoint", zap.String("kind", kind), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = trainings
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) == len(TrainingKinds) {
		return nil, fmt.Errorf("search trainings: %w", errors.Join(errs...))
	}

	var all []Training
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (c *Client) searchKind(ctx context.Context, kind string, q url.Values) ([]Training, error) {
	var raw any
	if err := c.getJSON(ctx, "/"+kind, q, &raw); err != nil {
		return nil, err
	}

	var items []trainingItem
	if err := decodeItems(unwrapList(raw, kind, "data"), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	out := make([]Training, 0, len(items))
	for _, item := range items {
		out = append(out, item.training(kind))
	}
	return out, nil
}

func (t trainingItem) training(kind string) Training {
	skills := append(skillNames(t.Skills), skillNames(t.Tags)...)
	title := firstNonEmpty(t.Title, t.Name, "Training")
	if len(skills) == 0 {
		skills = ExtractTrainingSkills(title, t.Description)
	}

	tr := Training{
		ID:            t.ID,
		Kind:          kind,
		Title:         title,
		Provider:      firstNonEmpty(t.Provider, t.Organizer, t.Institution, "Unknown"),
		Description:   t.Description,
		Mode:          strings.ToUpper(firstNonEmpty(t.Mode, t.Type, "OFFLINE")),
		Location:      firstNonEmpty(t.Location, "TBD"),
		Date:          firstNonEmpty(t.Date, t.ScheduledAt, t.StartDate),
		Lat:           t.Lat,
		Lng:           t.Lng,
		CoveredSkills: utils.Dedupe(skills),
	}
	if tr.ID == "" {
		tr.ID = kind + ":" + strings.ToLower(title)
	}
	if tr.Lat == 0 && tr.Lng == 0 {
		tr.Lat, tr.Lng = DefaultLat, DefaultLng
	}
	return tr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
