package validation

import (
	"testing"

	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		qType   model.QuestionType
		content string
		options []model.Option
		keys    []string
	}{
		{
			name:  "empty multiple choice",
			qType: model.QuestionMultipleChoice,
			keys:  []string{i18n.QuestionContentRequired, i18n.QuestionOptionsRequired, i18n.QuestionCorrectRequired},
		},
		{
			name:    "essay with content",
			qType:   model.QuestionEssay,
			content: "What is gravity?",
		},
		{
			name:    "essay ignores dormant options",
			qType:   model.QuestionEssay,
			content: "Explain",
			options: []model.Option{{Text: ""}},
		},
		{
			name:    "whitespace content",
			qType:   model.QuestionEssay,
			content: "  \n\t",
			keys:    []string{i18n.QuestionContentRequired},
		},
		{
			name:    "blank option text",
			qType:   model.QuestionMultipleChoice,
			content: "2+2?",
			options: []model.Option{{Text: "4", IsCorrect: true}, {Text: " "}},
			keys:    []string{i18n.QuestionOptionTextRequired},
		},
		{
			name:    "no correct option",
			qType:   model.QuestionMultipleChoice,
			content: "2+2?",
			options: []model.Option{{Text: "4"}, {Text: "5"}},
			keys:    []string{i18n.QuestionCorrectRequired},
		},
		{
			name:    "valid multiple choice",
			qType:   model.QuestionMultipleChoice,
			content: "2+2?",
			options: []model.Option{{Text: "4", IsCorrect: true}, {Text: "5"}},
		},
		{
			name:    "unknown type",
			qType:   "true_false",
			content: "x",
			keys:    []string{i18n.QuestionTypeInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateQuestion(tt.qType, tt.content, tt.options)
			assert.Equal(t, len(tt.keys) == 0, r.Valid())
			assert.Len(t, r.Issues, len(tt.keys))
			for _, k := range tt.keys {
				assert.True(t, r.Has(k), k)
			}
		})
	}
}

func TestResultMessages(t *testing.T) {
	r := ValidateQuestion(model.QuestionMultipleChoice, "q", []model.Option{{Text: "ok", IsCorrect: true}, {Text: ""}})

	assert.Equal(t, []string{"Option B must have text"}, r.Messages(i18n.English))
	assert.Equal(t, []string{"Đáp án B chưa có nội dung"}, r.Messages(i18n.New(i18n.LangVI)))

	err := r.Err(nil)
	ve, ok := util.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []util.FieldError{{Field: "options[1].text", Message: "Option B must have text"}}, ve.Fields)

	assert.NoError(t, ValidateQuestion(model.QuestionEssay, "fine", nil).Err(nil))
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "A", OptionLabel(0))
	assert.Equal(t, "Z", OptionLabel(25))
	assert.Equal(t, "27", OptionLabel(26))
}
