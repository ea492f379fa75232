package service

import (
	"log"
	"strings"

	"github.com/tidwall/gjson"

	"tarefas/internal/model"
)

// Fallback body for open-text questions whose source text is empty.
// Kept in Portuguese: it is user-visible content on a Brazilian platform.
const placeholderAnswer = "Resposta automática"

// AnswerService synthesizes a plausible answer payload per question.
// It never fails a whole task: anything it cannot interpret degrades to
// an empty answer for that question alone.
type AnswerService struct{}

// NewAnswerService creates a new answer synthesizer
func NewAnswerService() *AnswerService {
	return &AnswerService{}
}

// Synthesize produces the {question_id, question_type, answer} triple for
// one question. Dispatch is by declared type with a generic fallback.
func (s *AnswerService) Synthesize(q model.Question) (qa model.QuestionAnswer) {
	qa = model.QuestionAnswer{
		QuestionID:   q.ID,
		QuestionType: q.Type,
		Answer:       map[string]any{},
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Answers] recovered synthesizing question %s: %v", q.ID, r)
			qa.Answer = map[string]any{}
		}
	}()

	opts := gjson.ParseBytes(q.Options)

	switch q.Type {
	case model.QuestionMultipleChoice:
		qa.Answer = multipleChoiceAnswer(opts)
	case model.QuestionOrderSentences:
		qa.Answer = valuesOf(opts.Get("sentences"))
	case model.QuestionFillWords:
		qa.Answer = oddValuesOf(opts.Get("phrase"))
	case model.QuestionTextAI, model.QuestionEssay, model.QuestionText:
		qa.Answer = textAnswer(q.Comment, opts)
	case model.QuestionCloud:
		qa.Answer = listOf(opts.Get("ids"))
	case model.QuestionFillLetters:
		if answer := opts.Get("answer"); answer.Exists() {
			qa.Answer = answer.Value()
		}
	default:
		qa.Answer = genericAnswer(opts)
	}
	return qa
}

// multipleChoiceAnswer picks the option flagged correct, or the first
// option as a best-effort guess.
func multipleChoiceAnswer(opts gjson.Result) map[string]any {
	answer := map[string]any{}
	if !opts.IsArray() {
		return answer
	}
	options := opts.Array()
	for _, opt := range options {
		if opt.Get("correct").Bool() {
			answer[opt.Get("id").String()] = true
			return answer
		}
	}
	if len(options) > 0 {
		answer[options[0].Get("id").String()] = true
	}
	return answer
}

// valuesOf collects each element's value field, preserving input order
func valuesOf(list gjson.Result) []any {
	values := []any{}
	list.ForEach(func(_, item gjson.Result) bool {
		values = append(values, item.Get("value").Value())
		return true
	})
	return values
}

// oddValuesOf collects value fields at odd indices only: even phrase
// tokens are assumed fixed text, odd ones the blanks to fill.
func oddValuesOf(list gjson.Result) []any {
	values := []any{}
	i := 0
	list.ForEach(func(_, item gjson.Result) bool {
		if i%2 == 1 {
			values = append(values, item.Get("value").Value())
		}
		i++
		return true
	})
	return values
}

// listOf returns the elements of a JSON array as-is, empty when absent
func listOf(list gjson.Result) []any {
	values := []any{}
	list.ForEach(func(_, item gjson.Result) bool {
		values = append(values, item.Value())
		return true
	})
	return values
}

// textAnswer strips markup from the question comment (or options.text)
// and falls back to a literal placeholder when nothing remains.
func textAnswer(comment string, opts gjson.Result) map[string]any {
	text := comment
	if text == "" {
		text = opts.Get("text").String()
	}
	clean := strings.TrimSpace(stripTags(text))
	if clean == "" {
		clean = placeholderAnswer
	}
	return map[string]any{"0": clean}
}

// genericAnswer maps each option key to its nested boolean answer flag
func genericAnswer(opts gjson.Result) map[string]any {
	answer := map[string]any{}
	if !opts.IsObject() {
		return answer
	}
	opts.ForEach(func(key, value gjson.Result) bool {
		flag := false
		if value.IsObject() {
			flag = value.Get("answer").Bool()
		}
		answer[key.String()] = flag
		return true
	})
	return answer
}

// stripTags removes angle-bracket-delimited spans. A text-only pass, not
// an HTML parser: instructional text is plain, not hostile markup.
func stripTags(s string) string {
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i:], '>')
		if j < 0 {
			break
		}
		s = s[:i] + s[i+j+1:]
	}
	return s
}
