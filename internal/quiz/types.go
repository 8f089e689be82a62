// Package quiz runs adaptive skill assessments: AI-generated questions
// whose difficulty tracks recent performance, graded against a passing
// score, with a credential issued on success.
package quiz

// Difficulty is the requested difficulty of a generated question.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Question is one multiple-choice question served to a learner.
type Question struct {
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
}

// AnswerRecord is one entry of a learner's session history.
type AnswerRecord struct {
	QuestionText string `json:"questionText"`
	IsCorrect    bool   `json:"isCorrect"`
}

// Details describes a quiz together with the learner's pass status.
type Details struct {
	Topic          string `json:"topic"`
	TotalQuestions int    `json:"totalQuestions"`
	PassingScore   int    `json:"passingScore"`
	HasPassed      bool   `json:"hasPassed"`
	CertificateID  string `json:"certificateId,omitempty"`
}

// SubmitResult is the outcome of grading a completed session.
type SubmitResult struct {
	Passed        bool    `json:"passed"`
	Message       string  `json:"message"`
	CertificateID string  `json:"certificateId,omitempty"`
	Percentage    float64 `json:"percentage"`
}
