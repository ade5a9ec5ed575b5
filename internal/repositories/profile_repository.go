package repositories

import (
	"context"

	"github.com/neighborhq/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository resolves resident profiles and neighborhood membership.
type ProfileRepository interface {
	// GetProfiles is the batched actor lookup behind feed enrichment.
	GetProfiles(ctx context.Context, ids []uint) (map[uint]models.Profile, error)
	GetByID(id uint) (*models.Profile, error)
	Upsert(profile *models.Profile) error
	// ListMemberIDs returns the user ids in a neighborhood, excluding one
	// (the acting user, so fan-out skips self-notification).
	ListMemberIDs(neighborhoodID, excludeUserID uint) ([]uint, error)
}

type postgresProfileRepository struct {
	db *gorm.DB
}

func NewPostgresProfileRepository(db *gorm.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) GetProfiles(ctx context.Context, ids []uint) (map[uint]models.Profile, error) {
	if len(ids) == 0 {
		return map[uint]models.Profile{}, nil
	}

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Profile, len(profiles))
	for _, profile := range profiles {
		byID[profile.ID] = profile
	}
	return byID, nil
}

func (r *postgresProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresProfileRepository) Upsert(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

func (r *postgresProfileRepository) ListMemberIDs(neighborhoodID, excludeUserID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Profile{}).
		Where("neighborhood_id = ? AND id <> ?", neighborhoodID, excludeUserID).
		Pluck("id", &ids).Error
	return ids, err
}
