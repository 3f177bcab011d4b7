package builder

import (
	"baitapvui_backend/internal/model"
)

// Reduce 返回在 s 上应用 a 后的新状态，不修改 s；引用不存在的题目或选项时状态不变
func Reduce(s model.BuilderState, a Action) model.BuilderState {
	next := s.Clone()

	switch a := a.(type) {
	case AddQuestion:
		t := a.Type
		if !t.Valid() {
			t = model.QuestionMultipleChoice
		}
		next.Questions = append(next.Questions, model.DraftQuestion{
			LocalID:  a.LocalID,
			Type:     t,
			Order:    len(next.Questions),
			Options:  []model.Option{},
			Media:    []model.MediaAttachment{},
			Revision: 1,
		})
		next.CurrentQuestionID = a.LocalID
		next.IsDirty = true

	case UpdateQuestion:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			if a.Patch.Type != nil && a.Patch.Type.Valid() {
				q.Type = *a.Patch.Type
			}
			if a.Patch.Content != nil {
				q.Content = *a.Patch.Content
			}
			if a.Patch.Options != nil {
				q.Options = append([]model.Option{}, a.Patch.Options...)
			}
			return true
		})

	case RemoveQuestion:
		i := next.IndexOf(a.LocalID)
		if i < 0 {
			return s
		}
		next.Questions = append(next.Questions[:i], next.Questions[i+1:]...)
		renumber(&next)
		if next.CurrentQuestionID == a.LocalID {
			next.CurrentQuestionID = ""
			if len(next.Questions) > 0 {
				next.CurrentQuestionID = next.Questions[0].LocalID
			}
		}
		next.IsDirty = true

	case MoveQuestion:
		if !move(&next, a.From, a.To) {
			return s
		}

	case ShiftQuestion:
		i := next.IndexOf(a.LocalID)
		if i < 0 || !move(&next, i, i+a.Delta) {
			return s
		}

	case SetQuestionType:
		if !a.Type.Valid() {
			return s
		}
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			if q.Type == a.Type {
				return false
			}
			// 切出选择题时保留选项
			q.Type = a.Type
			if q.Options == nil {
				q.Options = []model.Option{}
			}
			return true
		})

	case AddOption:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			q.Options = append(q.Options, model.Option{ID: a.OptionID, Text: a.Text})
			return true
		})

	case UpdateOption:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			j := optionIndex(q, a.OptionID)
			if j < 0 {
				return false
			}
			if a.Patch.Text != nil {
				q.Options[j].Text = *a.Patch.Text
			}
			if a.Patch.IsCorrect != nil {
				setCorrect(q, j, *a.Patch.IsCorrect)
			}
			return true
		})

	case DeleteOption:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			j := optionIndex(q, a.OptionID)
			if j < 0 {
				return false
			}
			q.Options = append(q.Options[:j], q.Options[j+1:]...)
			return true
		})

	case SetCorrectOption:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			j := optionIndex(q, a.OptionID)
			if j < 0 {
				return false
			}
			setCorrect(q, j, a.Correct)
			return true
		})

	case AttachMedia:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			q.Media = append(q.Media, a.Media)
			return true
		})

	case DetachMedia:
		edit(&next, a.LocalID, func(q *model.DraftQuestion) bool {
			for j, m := range q.Media {
				if m.ID == a.MediaID {
					q.Media = append(q.Media[:j], q.Media[j+1:]...)
					return true
				}
			}
			return false
		})

	case SelectQuestion:
		if a.LocalID != "" && next.IndexOf(a.LocalID) < 0 {
			return s
		}
		next.CurrentQuestionID = a.LocalID

	case MarkSaved:
		i := next.IndexOf(a.LocalID)
		if i < 0 {
			return s
		}
		q := &next.Questions[i]
		if a.BackendID != "" {
			q.ID = a.BackendID
		}
		if q.Revision == a.Revision {
			q.IsSaved = true
		}

	case MarkClean:
		if !next.HasUnsaved() {
			next.IsDirty = false
		}

	case Load:
		next = a.State.Clone()
		if next.AssignmentID == "" {
			next.AssignmentID = s.AssignmentID
		}
		next.IsLoading = false

	case Reset:
		next = model.NewBuilderState(s.AssignmentID)

	case SetLoading:
		next.IsLoading = a.Loading
		if a.Loading {
			next.Error = ""
		}

	case SetError:
		next.Error = a.Message
		next.IsLoading = false
	}

	return next
}

// edit 对 localID 对应的题目执行 fn，有修改时题目变为未保存、状态变脏
func edit(s *model.BuilderState, localID string, fn func(q *model.DraftQuestion) bool) {
	i := s.IndexOf(localID)
	if i < 0 {
		return
	}
	if fn(&s.Questions[i]) {
		touch(&s.Questions[i])
		s.IsDirty = true
	}
}

func touch(q *model.DraftQuestion) {
	q.IsSaved = false
	q.Revision++
}

// renumber 按位置重排 order，顺序变化的题目变为未保存
func renumber(s *model.BuilderState) {
	for i := range s.Questions {
		if s.Questions[i].Order != i {
			s.Questions[i].Order = i
			touch(&s.Questions[i])
			s.IsDirty = true
		}
	}
}

func move(s *model.BuilderState, from, to int) bool {
	n := len(s.Questions)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	q := s.Questions[from]
	s.Questions = append(s.Questions[:from], s.Questions[from+1:]...)
	s.Questions = append(s.Questions[:to], append([]model.DraftQuestion{q}, s.Questions[to:]...)...)
	renumber(s)
	return true
}

func optionIndex(q *model.DraftQuestion, optionID string) int {
	for j, o := range q.Options {
		if o.ID == optionID {
			return j
		}
	}
	return -1
}

// setCorrect 标记选项 j，设为正确时清除其余选项
func setCorrect(q *model.DraftQuestion, j int, correct bool) {
	if !correct {
		q.Options[j].IsCorrect = false
		return
	}
	for k := range q.Options {
		q.Options[k].IsCorrect = k == j
	}
}
