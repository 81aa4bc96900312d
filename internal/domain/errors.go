package domain

import "errors"

var (
	// ErrQuizNotFound covers unknown links and unpublished quizzes alike, so
	// draft links cannot be distinguished from nonexistent ones.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question index outside the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionLocked is returned when sequential unlock gates a question
	// the team has not reached yet.
	ErrQuestionLocked = errors.New("question is locked")
	// ErrTeamNotFound indicates an unknown team id.
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamExists indicates a team name collision on create.
	ErrTeamExists = errors.New("team already exists")
	// ErrGameNotFound indicates an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameActive rejects starting a game that is already running.
	ErrGameActive = errors.New("game is already active")
	// ErrGameNotActive rejects pausing a game that is not running.
	ErrGameNotActive = errors.New("game is not active")
	// ErrUserExists indicates an email collision on register.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for unknown emails and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when the admin key is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
)
