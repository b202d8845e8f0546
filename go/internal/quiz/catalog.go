package quiz

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcdev12/livesession/go/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Questions []models.QuizQuestion `yaml:"questions"`
}

// DefaultCatalog returns the built-in question set.
func DefaultCatalog() ([]models.QuizQuestion, error) {
	return LoadCatalog(bytes.NewReader(embeddedCatalog))
}

// LoadCatalogFile reads a YAML question set from path.
func LoadCatalogFile(path string) ([]models.QuizQuestion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open quiz catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog decodes and validates a YAML question set.
func LoadCatalog(r io.Reader) ([]models.QuizQuestion, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse quiz catalog: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz catalog has no questions", models.ErrValidation)
	}

	seen := make(map[string]bool, len(file.Questions))
	for i, q := range file.Questions {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: duplicate question id %q", models.ErrValidation, q.ID)
		}
		seen[q.ID] = true
	}
	return file.Questions, nil
}

func validateQuestion(q models.QuizQuestion) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: id is required", models.ErrValidation)
	}
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question text is required", models.ErrValidation)
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", models.ErrValidation, i)
		}
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct answer index %d out of range", models.ErrValidation, q.CorrectAnswerIndex)
	}
	if q.TimeLimit <= 0 {
		return fmt.Errorf("%w: time limit must be positive", models.ErrValidation)
	}
	return nil
}
