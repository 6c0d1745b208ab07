package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/workflow"
)

// RunRequest is the body of POST /workflow/run.
type RunRequest struct {
	UserID int    `json:"userId" validate:"required,gt=0"`
	Prompt string `json:"prompt" validate:"required"`
}

type healthConfig struct {
	APIURL             string  `json:"apiUrl"`
	LLMConfigured      bool    `json:"llmConfigured"`
	GoodMatchThreshold float64 `json:"goodMatchThreshold"`
	MinGoodMatches     int     `json:"minGoodMatches"`
}

type healthResponse struct {
	Status  string       `json:"status"`
	Service string       `json:"service"`
	Version string       `json:"version"`
	Config  healthConfig `json:"config"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: serviceName,
		Version: s.cfg.Version,
		Config: healthConfig{
			APIURL:             s.cfg.APIURL,
			LLMConfigured:      s.cfg.LLMConfigured,
			GoodMatchThreshold: s.cfg.Gaps.GoodMatchThreshold,
			MinGoodMatches:     s.cfg.Gaps.MinGoodMatches,
		},
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := s.decodeBody(w, r, &req, func() { req.Prompt = strings.TrimSpace(req.Prompt) }); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	state, path, err := s.runner.Run(r.Context(), req.UserID, req.Prompt)
	if err != nil {
		status := HTTPStatus(err)
		s.logger.Error("workflow failed",
			zap.Int(logger.FieldUserID, req.UserID),
			zap.Int("status", status),
			zap.Int("nodes", len(path)),
			zap.Error(err),
		)
		s.errorResponse(w, status, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, workflow.NewResponse(state, s.cfg.MaxJobs, s.cfg.Debug))
}

// CandidateSkill is one evidence entry of a match-score request.
type CandidateSkill struct {
	Skill           string `json:"skill" validate:"required"`
	CredentialCount int    `json:"credential_count" validate:"gte=0"`
	ExperienceCount int    `json:"experience_count" validate:"gte=0"`
}

// MatchScoreRequest is the body of POST /agent/match-score.
type MatchScoreRequest struct {
	JobSkills           []string         `json:"job_skills" validate:"required,min=1,dive,required"`
	CandidateSkills     []CandidateSkill `json:"candidate_skills" validate:"required,min=1,dive"`
	SimilarityThreshold *float64         `json:"similarity_threshold" validate:"omitempty,gte=0,lte=1"`
}

type matchScoreResponse struct {
	Result    matching.MatchResult `json:"result"`
	GoodMatch bool                 `json:"good_match"`
}

// handleMatchScore scores one skill list against candidate evidence without
// running the workflow.
func (s *Server) handleMatchScore(w http.ResponseWriter, r *http.Request) {
	var req MatchScoreRequest
	if err := s.decodeBody(w, r, &req, nil); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	evidence := make([]matching.CandidateSkillEvidence, 0, len(req.CandidateSkills))
	for _, c := range req.CandidateSkills {
		evidence = append(evidence, matching.CandidateSkillEvidence{
			Skill:           c.Skill,
			CredentialCount: c.CredentialCount,
			ExperienceCount: c.ExperienceCount,
		})
	}

	result, err := matching.Compute(req.JobSkills, evidence)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	threshold := s.cfg.RankThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}
	if threshold <= 0 {
		threshold = workflow.DefaultRankThreshold
	}

	s.jsonResponse(w, http.StatusOK, matchScoreResponse{
		Result:    result,
		GoodMatch: matching.RankedJob{Result: result}.GoodMatch(threshold),
	})
}

// decodeBody reads a JSON body into v, runs normalize when given, and
// validates the result.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any, normalize func()) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Message: "invalid JSON body: " + err.Error()}
	}

	if normalize != nil {
		normalize()
	}
	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: fe.Field(), Message: "failed on the '" + fe.Tag() + "' rule"}
		}
		return &ErrValidation{Message: err.Error()}
	}
	return nil
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
