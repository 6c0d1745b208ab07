package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/workflow"
)

const (
	PromptShowJobs      = "Show jobs"
	PromptShowTrainings = "Show trainings"
	PromptShowPopup     = "Show skill gap popup"
	PromptShowDebug     = "Show debug log"
	PromptDumpToFile    = "Dump response to file"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowJobs, PromptShowTrainings, PromptShowPopup, PromptShowDebug, PromptDumpToFile, PromptExit},
}

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Run a single prompt through the workflow interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		ask(cmd)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntP("user", "u", 0, "user id to load the profile for (asked interactively when unset)")
	askCmd.Flags().StringP("prompt", "m", "", "the request, e.g. \"I want to work as a PHP developer\" (asked interactively when unset)")
}

func ask(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()
	defer logger.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	userID, text, err := askInput(cmd)
	if err != nil {
		logger.Fatal("reading input", zap.Error(err))
	}

	p, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}
	defer p.close()

	state, _, err := p.engine.Run(ctx, userID, text)
	if err != nil {
		logger.Fatal("running workflow", zap.Error(err))
	}

	resp := workflow.NewResponse(state, config.Matching.MaxJobs, true)
	logger.Info("workflow finished",
		zap.String("intent", string(resp.Intent)),
		zap.String("query", resp.Query),
		zap.Int("jobs", len(resp.Jobs)),
		zap.Int("trainings", len(resp.Trainings)),
	)

	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, resp); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func askInput(cmd *cobra.Command) (int, string, error) {
	userID, _ := cmd.Flags().GetInt("user")
	text, _ := cmd.Flags().GetString("prompt")

	if userID <= 0 {
		userPrompt := promptui.Prompt{
			Label: "User ID",
			Validate: func(input string) error {
				id, err := strconv.Atoi(strings.TrimSpace(input))
				if err != nil || id <= 0 {
					return errors.New("user id must be a positive number")
				}
				return nil
			},
		}
		raw, err := userPrompt.Run()
		if err != nil {
			return 0, "", err
		}
		userID, _ = strconv.Atoi(strings.TrimSpace(raw))
	}

	if strings.TrimSpace(text) == "" {
		textPrompt := promptui.Prompt{
			Label: "What are you looking for",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("prompt is required")
				}
				return nil
			},
		}
		raw, err := textPrompt.Run()
		if err != nil {
			return 0, "", err
		}
		text = raw
	}

	return userID, strings.TrimSpace(text), nil
}

func handleAction(action string, logger *zap.Logger, resp workflow.Response) error {
	switch action {
	case PromptShowJobs:
		for _, job := range resp.Jobs {
			logger.Info(fmt.Sprintf("%s at %s", job.Title, job.Company),
				zap.String("id", job.ID),
				zap.Float64("match_score", job.MatchScore),
				zap.String("coverage", job.CoverageLabel),
				zap.String("why", job.Why),
			)
		}
		return nil
	case PromptShowTrainings:
		for _, t := range resp.Trainings {
			logger.Info(fmt.Sprintf("%s by %s", t.Title, t.Provider),
				zap.String("mode", t.Mode),
				zap.Float64("relevance", t.RelevanceScore),
				zap.String("why", t.Why),
			)
		}
		return nil
	case PromptShowPopup:
		pretty, _ := json.MarshalIndent(resp.UI, "", "  ")
		logger.Info(string(pretty))
		return nil
	case PromptShowDebug:
		logger.Info(strings.Join(resp.DebugLogs, "\n"))
		return nil
	case PromptDumpToFile:
		filename, err := dumpToTmpFile(resp)
		if err != nil {
			return fmt.Errorf("dump response to file: %w", err)
		}
		logger.Info("dumping response to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func dumpToTmpFile(v any) (string, error) {
	file, err := os.CreateTemp("", "skillmatch_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
