package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/transcript"
)

const (
	PromptAnswer  = "Answer"
	PromptSkip    = "Skip"
	PromptSummary = "Summary"
	PromptEnd     = "End interview"
)

var errEnd = errors.New("interview ended")

var menu = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAnswer, PromptSkip, PromptSummary, PromptEnd},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interview in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		runInterview()
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().String("job-description", "", "job description file (text or pdf)")
	interviewCmd.Flags().String("resume", "", "resume file (text or pdf)")
	interviewCmd.Flags().String("transcript-dir", "", "directory for the interview transcript. Default is the temp dir.")
	interviewCmd.Flags().String("vacancy", "", "hh.ru vacancy id or URL used as the job description")
	interviewCmd.Flags().String("hh-resume", "", "hh.ru resume id used as the resume (requires a token)")

	viper.BindPFlag("interview.job-description-file", interviewCmd.Flags().Lookup("job-description"))
	viper.BindPFlag("interview.resume-file", interviewCmd.Flags().Lookup("resume"))
	viper.BindPFlag("interview.transcript-dir", interviewCmd.Flags().Lookup("transcript-dir"))
	viper.BindPFlag("interview.headhunter.vacancy", interviewCmd.Flags().Lookup("vacancy"))
	viper.BindPFlag("interview.headhunter.resume-id", interviewCmd.Flags().Lookup("hh-resume"))
}

// localSession is a single terminal interview driven through the service.
type localSession struct {
	id         string
	service    *interview.Service
	schedule   interview.Schedule
	transcript *transcript.Transcript
	logger     *zap.Logger
	startedAt  time.Time
}

func runInterview() {
	ctx := context.Background()

	// The terminal belongs to the candidate, logs go to stderr.
	appLogger, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: []string{"stderr"},
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer appLogger.Sync()

	config, err := getConfig()
	if err != nil {
		appLogger.Fatal("getting a config", zap.Error(err))
	}

	jobDescription, resume, err := loadDocuments(ctx, config.Interview, appLogger)
	if err != nil {
		appLogger.Fatal("preparing the interview", zap.Error(err),
			zap.String("hint", "set --job-description/--resume files or --vacancy/--hh-resume"))
	}

	schedule, err := buildSchedule(config.Interview.Schedule)
	if err != nil {
		appLogger.Fatal("parsing the round schedule", zap.Error(err))
	}

	service, err := newService(ctx, config, appLogger)
	if err != nil {
		appLogger.Fatal("preparing the interview service", zap.Error(err))
	}

	id := uuid.NewString()
	session := &localSession{
		id:         id,
		service:    service,
		schedule:   schedule,
		transcript: transcript.New(id, jobDescription, resume),
		logger:     logger.WithSession(appLogger, id),
	}

	if err := session.run(ctx, jobDescription, resume); err != nil && !errors.Is(err, errEnd) {
		appLogger.Error("interview aborted", zap.Error(err))
	}

	session.finish(config.Interview.TranscriptDir)
}

func (s *localSession) run(ctx context.Context, jobDescription, resume string) error {
	s.startedAt = time.Now()

	first, err := s.service.StartOrContinue(ctx, s.id, jobDescription, resume, "")
	if err != nil {
		return err
	}
	s.transcript.Record(first)
	printQuestion(first)

	for {
		_, action, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errEnd
			}
			return err
		}

		if err := s.handle(ctx, action); err != nil {
			return err
		}
	}
}

func (s *localSession) handle(ctx context.Context, action string) error {
	switch action {
	case PromptAnswer:
		answerPrompt := promptui.Prompt{Label: "Your answer"}
		answer, err := answerPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				return nil
			}
			return err
		}
		return s.turn(ctx, answer)
	case PromptSkip:
		return s.turn(ctx, "")
	case PromptSummary:
		summary, err := s.service.GetSummary(s.id)
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	case PromptEnd:
		return errEnd
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *localSession) turn(ctx context.Context, answer string) error {
	round := s.schedule.RoundAt(time.Since(s.startedAt))
	if _, err := s.service.SetRound(s.id, round); err != nil {
		return err
	}

	result, err := s.service.StartOrContinue(ctx, s.id, "", "", answer)
	if err != nil {
		var genErr *ai.GenerationError
		if errors.As(err, &genErr) {
			// Session state is unchanged, the candidate may try again.
			s.logger.Warn("could not prepare the next question", zap.Error(err))
			return nil
		}
		return err
	}

	if strings.TrimSpace(answer) == "" {
		s.transcript.Skipped(result)
	} else {
		s.transcript.Answered(answer, result)
	}

	printQuestion(result)
	return nil
}

func (s *localSession) finish(transcriptDir string) {
	summary, err := s.service.GetSummary(s.id)
	if err != nil {
		s.logger.Warn("session is already gone", zap.Error(err))
		return
	}
	defer s.service.EndSession(s.id)

	printSummary(summary)

	filename, err := s.transcript.DumpToFile(transcriptDir, &summary)
	if err != nil {
		s.logger.Error("dumping transcript to file", zap.Error(err))
		return
	}
	s.logger.Info("dumping transcript to file", zap.String("filename", filename))
}

func printQuestion(result *interview.TurnResult) {
	fmt.Fprintf(os.Stdout, "\n[%s] %s\n\n", result.Round, result.Question)
}

func printSummary(summary interview.Summary) {
	fmt.Fprintf(os.Stdout, "\nQuestions asked: %d\nTotal score: %d\nAverage score: %.1f\nRound: %s\n\n",
		summary.QuestionCount, summary.TotalScore, summary.AverageScore(), summary.CurrentRound)
}
