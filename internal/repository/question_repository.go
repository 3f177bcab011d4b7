package repository

import (
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func preloadMedia(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// Create 在同一事务中创建题目并认领媒体
func (r *QuestionRepository) Create(q *model.AssignmentQuestion, mediaIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Media").Create(q).Error; err != nil {
			return err
		}
		return attachMedia(tx, q.ID, mediaIDs)
	})
}

func (r *QuestionRepository) FindByID(id string) (*model.AssignmentQuestion, error) {
	var q model.AssignmentQuestion
	err := r.DB.Preload("Media", preloadMedia).Where("id = ?", id).First(&q).Error
	return &q, err
}

func (r *QuestionRepository) FindByAssignment(assignmentID string) ([]*model.AssignmentQuestion, error) {
	var list []*model.AssignmentQuestion
	err := r.DB.Preload("Media", preloadMedia).
		Where("assignment_id = ?", assignmentID).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// Update 保存题目字段，mediaIDs 非 nil 时替换已挂载的媒体
func (r *QuestionRepository) Update(q *model.AssignmentQuestion, mediaIDs *[]string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Media").Save(q).Error; err != nil {
			return err
		}
		if mediaIDs == nil {
			return nil
		}
		detach := tx.Model(&model.Media{}).Where("question_id = ?", q.ID)
		if len(*mediaIDs) > 0 {
			detach = detach.Where("id NOT IN ?", *mediaIDs)
		}
		if err := detach.Update("question_id", nil).Error; err != nil {
			return err
		}
		return attachMedia(tx, q.ID, *mediaIDs)
	})
}

// Delete 删除题目，释放其媒体等待清理，并压缩同作业题目的顺序
func (r *QuestionRepository) Delete(q *model.AssignmentQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.AssignmentQuestion{}, "id = ?", q.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Media{}).Where("question_id = ?", q.ID).Update("question_id", nil).Error; err != nil {
			return err
		}

		var rest []*model.AssignmentQuestion
		if err := tx.Where("assignment_id = ?", q.AssignmentID).
			Order("sort_order ASC").Order("created_at ASC").
			Find(&rest).Error; err != nil {
			return err
		}
		for i, sibling := range rest {
			if sibling.Order == i {
				continue
			}
			if err := tx.Model(&model.AssignmentQuestion{}).Where("id = ?", sibling.ID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Reorder 在同一事务中写入顺序，所有 ID 必须属于该作业
func (r *QuestionRepository) Reorder(assignmentID string, orders []model.QuestionOrder) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&model.AssignmentQuestion{}).
				Where("id = ? AND assignment_id = ?", o.ID, assignmentID).
				Update("sort_order", o.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var n int64
				if err := tx.Model(&model.AssignmentQuestion{}).
					Where("id = ? AND assignment_id = ?", o.ID, assignmentID).
					Count(&n).Error; err != nil {
					return err
				}
				if n == 0 {
					return util.ErrQuestionNotFound
				}
			}
		}
		return nil
	})
}

// attachMedia 为题目认领未挂载的媒体，已属于其他题目的媒体拒绝
func attachMedia(tx *gorm.DB, questionID string, mediaIDs []string) error {
	ids := uniqueStrings(mediaIDs)
	if len(ids) == 0 {
		return nil
	}

	var found int64
	if err := tx.Model(&model.Media{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(ids)) {
		return util.ErrMediaNotFound
	}

	var claimable int64
	if err := tx.Model(&model.Media{}).
		Where("id IN ? AND (question_id IS NULL OR question_id = ?)", ids, questionID).
		Count(&claimable).Error; err != nil {
		return err
	}
	if claimable != int64(len(ids)) {
		return util.ErrMediaAlreadyAttached
	}

	return tx.Model(&model.Media{}).Where("id IN ?", ids).Update("question_id", questionID).Error
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
