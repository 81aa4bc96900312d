package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Quiz is an escape-room quiz with an ordered set of questions, reachable
// publicly through its opaque link token once published.
type Quiz struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Link             string     `json:"quizLink"`
	IsPublished      bool       `json:"isPublished"`
	TotalTimeMinutes int        `json:"totalTimeMinutes"`
	SequentialUnlock bool       `json:"sequentialUnlock"`
	Questions        []Question `json:"questions"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Question is a value object owned by its quiz. Order is 1-based and contiguous.
type Question struct {
	Text             string `json:"questionText"`
	CorrectAnswer    string `json:"correctAnswer,omitempty"`
	Order            int    `json:"questionOrder"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
}

// PublicView returns a copy of the quiz with correct answers stripped.
// Answers never leave the server for unsolved questions.
func (q Quiz) PublicView() Quiz {
	view := q
	view.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		view.Questions[i] = question
	}
	return view
}

// QuestionByOrder returns the question with the given 1-based order.
func (q Quiz) QuestionByOrder(order int) (Question, bool) {
	for _, question := range q.Questions {
		if question.Order == order {
			return question, true
		}
	}
	return Question{}, false
}

// AnswerMatches compares a submitted answer to the correct one, trimmed and
// case-insensitively.
func (q Question) AnswerMatches(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
}

// AnswerRecord is the per-question outcome stored inside a submission.
type AnswerRecord struct {
	QuestionOrder    int    `json:"questionOrder"`
	Answer           string `json:"answer"`
	IsCorrect        bool   `json:"isCorrect"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

// Submission is an immutable record of one completed quiz attempt by a team.
// Teams are referenced by name only; repeat submissions create new records.
type Submission struct {
	ID          uuid.UUID      `json:"id"`
	QuizID      uuid.UUID      `json:"quizId"`
	QuizTitle   string         `json:"quizTitle,omitempty"`
	TeamName    string         `json:"teamName"`
	Answers     []AnswerRecord `json:"answers"`
	Score       int            `json:"score"`
	Percentage  int            `json:"percentage"`
	StartedAt   time.Time      `json:"startTime"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Percentage computes the rounded percentage for score out of total.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(score)/float64(total)*100 + 0.5)
}

// Team is a plain CRUD entity; member count is display-only.
type Team struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Game is the single event record driving the public "current game" view.
//
// State machine: inactive -> active -> paused (isActive=false) -> completed.
type Game struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"eventName"`
	IsActive    bool       `json:"isActive"`
	IsCompleted bool       `json:"isCompleted"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	WinnerTeam  string     `json:"winnerTeam,omitempty"`
}

// User holds admin credentials. Passwords are stored as bcrypt hashes.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LeaderboardEntry is the flattened, sortable view of a submission.
type LeaderboardEntry struct {
	TeamName       string    `json:"team_name"`
	Score          int       `json:"score"`
	Percentage     int       `json:"percentage"`
	TotalQuestions int       `json:"total_questions"`
	QuizTitle      string    `json:"quiz_title"`
	SubmittedAt    time.Time `json:"submitted_at"`
	CompletionTime int       `json:"completion_time"`
}

// Leaderboard is an ordered scoreboard snapshot pushed to websocket subscribers.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
