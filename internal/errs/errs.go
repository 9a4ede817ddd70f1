package errs

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrMissingInput    = errors.New("either text, a URL or at least one file must be provided")
	ErrMissingAPIKey   = errors.New("API key is required before generating content")
	ErrFileNotFound    = errors.New("file not found")
	ErrNoQuiz          = errors.New("no quiz has been generated")
	ErrNoFlashcards    = errors.New("no flashcards have been generated")
	ErrNoMindmap       = errors.New("no mindmap has been generated")
	ErrNotLoggedIn     = errors.New("no user is logged in")
)
