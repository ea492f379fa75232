package model

import "encoding/json"

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionOrderSentences QuestionType = "order-sentences"
	QuestionFillWords      QuestionType = "fill-words"
	QuestionTextAI         QuestionType = "text_ai"
	QuestionEssay          QuestionType = "essay"
	QuestionText           QuestionType = "text"
	QuestionCloud          QuestionType = "cloud"
	QuestionFillLetters    QuestionType = "fill-letters"
	QuestionInfo           QuestionType = "info" // informational, never answered
)

// Question is one question inside a task detail. The options shape varies
// per type (a choice list, a dict of sentences/phrase tokens, a key->value
// map), so it stays raw until the synthesizer dispatches on Type.
type Question struct {
	ID      FlexID          `json:"id"`
	Type    QuestionType    `json:"type"`
	Comment string          `json:"comment,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

// QuestionAnswer is one synthesized answer entry of a submission
type QuestionAnswer struct {
	QuestionID   FlexID       `json:"question_id"`
	QuestionType QuestionType `json:"question_type"`
	Answer       any          `json:"answer"`
}

// SubmissionPayload is the body posted to /tms/task/{id}/answer
type SubmissionPayload struct {
	Answers map[string]QuestionAnswer `json:"answers"`
	Final   bool                      `json:"final"`
	Status  string                    `json:"status"`
}

// Submission statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)
