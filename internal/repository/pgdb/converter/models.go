package converter

import "time"

// UserModel представляет запись таблицы users в PostgreSQL (без face_descriptor).
type UserModel struct {
	ID             string     `db:"id"`
	Email          string     `db:"email"`
	Username       *string    `db:"username"`
	Name           *string    `db:"name"`
	ProfilePicture *string    `db:"profile_picture"`
	PasswordHash   *string    `db:"password_hash"`
	GoogleID       *string    `db:"google_id"`
	IsAdmin        bool       `db:"is_admin"`
	Settings       []byte     `db:"settings"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
}

// ResultModel представляет запись таблицы results. JSONB-поля хранятся сырыми байтами.
type ResultModel struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Topic          string    `db:"topic"`
	Difficulty     string    `db:"difficulty"`
	Score          int       `db:"score"`
	TotalQuestions int       `db:"total_questions"`
	Correct        int       `db:"correct"`
	Incorrect      int       `db:"incorrect"`
	Percentage     string    `db:"percentage"`
	Questions      []byte    `db:"questions"`
	UserAnswers    []byte    `db:"user_answers"`
	Explanations   []byte    `db:"explanations"`
	TimeTaken      *int      `db:"time_taken"`
	CreatedAt      time.Time `db:"created_at"`
}

// QuestionModel представляет запись таблицы questions.
type QuestionModel struct {
	ID            int64     `db:"id"`
	Topic         string    `db:"topic"`
	Difficulty    string    `db:"difficulty"`
	Question      string    `db:"question"`
	Options       []byte    `db:"options"`
	CorrectAnswer string    `db:"correct_answer"`
	CreatedAt     time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
