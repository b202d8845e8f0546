package main

import (
	"fmt"
	"os"

	"github.com/mcdev12/livesession/go/internal/config"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/quiz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(cfg config.Config) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(cfg.Level())
}

func loadQuestions(cfg config.Config) ([]models.QuizQuestion, error) {
	if cfg.QuizCatalog == "" {
		return quiz.DefaultCatalog()
	}
	questions, err := quiz.LoadCatalogFile(cfg.QuizCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz catalog: %w", err)
	}
	log.Info().
		Str("path", cfg.QuizCatalog).
		Int("questions", len(questions)).
		Msg("loaded quiz catalog")
	return questions, nil
}
