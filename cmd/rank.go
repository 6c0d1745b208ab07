package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/gaps"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/workflow"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank jobs from a file against candidate evidence and print the gap analysis",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()
		defer logger.Sync()

		config, err := getConfig(viper.GetViper())
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		jobsFile, _ := cmd.Flags().GetString("jobs")
		evidenceFile, _ := cmd.Flags().GetString("evidence")

		if err := rank(cmd.OutOrStdout(), jobsFile, evidenceFile, config.Matching); err != nil {
			logger.Fatal("ranking jobs", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("jobs", "", "JSON file with an array of job postings")
	rankCmd.Flags().String("evidence", "", "JSON file with an array of candidate skill evidence")
	rankCmd.MarkFlagRequired("jobs")
	rankCmd.MarkFlagRequired("evidence")
}

type rankReport struct {
	Jobs     []workflow.JobMatch `json:"jobs"`
	Analysis *gaps.Analysis      `json:"analysis"`
}

func rank(out io.Writer, jobsFile, evidenceFile string, cfg MatchingConfig) error {
	var jobs []matching.JobPosting
	if err := readJSON(jobsFile, &jobs); err != nil {
		return err
	}

	var evidence []matching.CandidateSkillEvidence
	if err := readJSON(evidenceFile, &evidence); err != nil {
		return err
	}

	ranked, err := matching.Rank(evidence, jobs, cfg.RankThreshold)
	if err != nil {
		return err
	}

	analysis, err := gaps.Analyze(ranked, evidence, cfg.Config)
	if err != nil {
		return err
	}

	report := rankReport{Jobs: make([]workflow.JobMatch, 0, len(ranked)), Analysis: analysis}
	for _, r := range ranked {
		report.Jobs = append(report.Jobs, workflow.NewJobMatch(r))
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
