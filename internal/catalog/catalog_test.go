package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/profile"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New(Config{APIURL: server.URL + "/api", MaxRetries: 2}, zap.NewNop())
	c.retryDelay = 0
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestLoadProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/session/12", r.URL.Path)
		writeJSON(t, w, map[string]any{
			"skills": []any{
				"PHP",
				map[string]any{"name": "Laravel", "proficiency": 4},
				map[string]any{"name": "docker", "credential_count": 0, "experience_count": 0},
				map[string]any{"name": "mysql", "experience_count": "2"},
			},
		})
	})

	p, err := c.LoadProfile(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, []matching.CandidateSkillEvidence{
		{Skill: "php", CredentialCount: 1},
		{Skill: "laravel", CredentialCount: 1},
		{Skill: "docker"},
		{Skill: "mysql", ExperienceCount: 2},
	}, p.Evidence)
	assert.Equal(t, map[string]int{"laravel": 4}, p.Proficiency)
	assert.Equal(t, []string{"laravel", "mysql", "php"}, p.Skills())
}

func TestLoadProfileNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.LoadProfile(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, profile.ErrNotFound))
}

func TestSearchJobs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body any
	}{
		{
			name: "wrapped",
			body: map[string]any{"jobs": []any{
				map[string]any{"id": 101, "title": "PHP Developer", "skills": []any{"PHP", map[string]any{"name": "Laravel"}}},
				map[string]any{"url": "https://jobs.example/2", "title": "Java Engineer", "description": "We use JavaScript and Docker."},
				map[string]any{"id": "3", "title": "Barista", "description": "Coffee"},
			}},
		},
		{
			name: "bare array",
			body: []any{
				map[string]any{"id": "101", "title": "PHP Developer", "required_skills": []any{"php", "laravel"}},
				map[string]any{"url": "https://jobs.example/2", "title": "Java Engineer", "description": "We use JavaScript and Docker."},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/jobs", r.URL.Path)
				assert.Equal(t, "php", r.URL.Query().Get("query"))
				assert.Equal(t, DefaultCity, r.URL.Query().Get("city"))
				assert.Equal(t, "20", r.URL.Query().Get("limit"))
				writeJSON(t, w, tc.body)
			})

			jobs, err := c.SearchJobs(context.Background(), "php", "", 0)
			require.NoError(t, err)
			require.Len(t, jobs, 2)

			assert.Equal(t, "101", jobs[0].ID)
			assert.Equal(t, []string{"php", "laravel"}, jobs[0].RequiredSkills)
			assert.Equal(t, "Unknown Company", jobs[0].Company)
			assert.Equal(t, DefaultLocation, jobs[0].Location)
			assert.Equal(t, DefaultLat, jobs[0].Lat)

			assert.Equal(t, "https://jobs.example/2", jobs[1].ID)
			assert.Equal(t, []string{"javascript", "java", "docker"}, jobs[1].RequiredSkills)
		})
	}
}

func TestSearchJobsWithoutIDOrURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"jobs": []any{
			map[string]any{"id": "7", "title": "Go Developer", "skills": []any{"go"}},
			map[string]any{"title": "PHP Developer", "skills": []any{"php", "docker"}},
		}})
	})

	jobs, err := c.SearchJobs(context.Background(), "developer", "", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "7", jobs[0].ID)
	assert.Equal(t, "job-2", jobs[1].ID)
	assert.Equal(t, FallbackJobID(1), jobs[1].ID)
}

func TestSearchJobsRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, []any{})
	})

	jobs, err := c.SearchJobs(context.Background(), "nurse", "Manila", 5)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchJobsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.SearchJobs(context.Background(), "nurse", "", 0)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestSearchTrainingsToleratesEndpointFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "docker,kubernetes", r.URL.Query().Get("skills"))
		switch r.URL.Path {
		case "/api/courses":
			writeJSON(t, w, map[string]any{"courses": []any{
				map[string]any{"id": 1, "title": "Docker Basics", "provider": "Acme", "skills": []any{"Docker"}, "tags": []any{"containers"}},
			}})
		case "/api/events":
			writeJSON(t, w, []any{
				map[string]any{"id": "e1", "name": "Kubernetes Meetup", "organizer": "CNCF", "type": "online"},
			})
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	})

	trainings, err := c.SearchTrainings(context.Background(), []string{"docker", "kubernetes"}, 0)
	require.NoError(t, err)
	require.Len(t, trainings, 2)

	assert.Equal(t, Training{
		ID:            "1",
		Kind:          "courses",
		Title:         "Docker Basics",
		Provider:      "Acme",
		Mode:          "OFFLINE",
		Location:      "TBD",
		Lat:           DefaultLat,
		Lng:           DefaultLng,
		CoveredSkills: []string{"docker", "containers"},
	}, trainings[0])

	assert.Equal(t, "events", trainings[1].Kind)
	assert.Equal(t, "CNCF", trainings[1].Provider)
	assert.Equal(t, "ONLINE", trainings[1].Mode)
	assert.Equal(t, []string{"kubernetes"}, trainings[1].CoveredSkills)
}

func TestSearchTrainingsAllEndpointsFail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := c.SearchTrainings(context.Background(), []string{"go"}, 0)
	require.Error(t, err)
}

func TestInferSkillsForRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []any{
			map[string]any{"id": 1, "skills": []any{"sql", "python"}},
			map[string]any{"id": 2, "skills": []any{"python", "excel"}},
			map[string]any{"id": 3, "skills": []any{"tableau", "python", "sql"}},
		})
	})

	skills, err := c.InferSkillsForRole(context.Background(), "data analyst", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "sql", "excel"}, skills)
}

func TestExtractJobSkillsWordBoundaries(t *testing.T) {
	assert.Equal(t, []string{"javascript"}, ExtractJobSkills("Senior JavaScript dev"))
	assert.Equal(t, []string{"java", "sql"}, ExtractJobSkills("Java backend", "PL/SQL a plus"))
	assert.Empty(t, ExtractJobSkills("Barista"))
}

func TestGetJSONHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.retryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.SearchJobs(ctx, "nurse", "", 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{APIURL: DefaultAPIURL}.Validate())
	require.Error(t, Config{APIURL: "not a url"}.Validate())
	require.Error(t, Config{}.Validate())
}
