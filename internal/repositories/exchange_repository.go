package repositories

import (
	"github.com/neighborhq/backend/internal/models"
	"gorm.io/gorm"
)

// ExchangeRepository covers the two marketplace tables: skills offers and
// goods/freebies. Their shapes are near-identical, so one interface serves
// both.
type ExchangeRepository interface {
	CreateSkill(item *models.SkillsExchange) error
	CreateGood(item *models.GoodsExchange) error
	ListSkills(neighborhoodID uint, includeArchived bool) ([]models.SkillsExchange, error)
	ListGoods(neighborhoodID uint, includeArchived bool) ([]models.GoodsExchange, error)
	DeleteSkill(id string, authorID uint) error
	DeleteGood(id string, authorID uint) error
}

type postgresExchangeRepository struct {
	db *gorm.DB
}

func NewPostgresExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &postgresExchangeRepository{db: db}
}

func (r *postgresExchangeRepository) CreateSkill(item *models.SkillsExchange) error {
	return r.db.Create(item).Error
}

func (r *postgresExchangeRepository) CreateGood(item *models.GoodsExchange) error {
	return r.db.Create(item).Error
}

func (r *postgresExchangeRepository) ListSkills(neighborhoodID uint, includeArchived bool) ([]models.SkillsExchange, error) {
	tx := r.db.Where("neighborhood_id = ?", neighborhoodID)
	if !includeArchived {
		tx = tx.Where("is_archived = ?", false)
	}
	var items []models.SkillsExchange
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresExchangeRepository) ListGoods(neighborhoodID uint, includeArchived bool) ([]models.GoodsExchange, error) {
	tx := r.db.Where("neighborhood_id = ?", neighborhoodID)
	if !includeArchived {
		tx = tx.Where("is_archived = ?", false)
	}
	var items []models.GoodsExchange
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresExchangeRepository) DeleteSkill(id string, authorID uint) error {
	result := r.db.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.SkillsExchange{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresExchangeRepository) DeleteGood(id string, authorID uint) error {
	result := r.db.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.GoodsExchange{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
