package models

// Profile carries the public-facing identity of a resident. It shares its
// primary key with the owning User row.
type Profile struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	DisplayName    *string `json:"display_name"`
	AvatarURL      *string `json:"avatar_url"`
	NeighborhoodID uint    `json:"neighborhood_id" gorm:"index"`
}

// DisplayNameOrDefault returns a neutral fallback when the resident has not
// set a display name, or when the profile lookup degraded to a nil profile.
func (p *Profile) DisplayNameOrDefault() string {
	if p == nil || p.DisplayName == nil || *p.DisplayName == "" {
		return "A neighbor"
	}
	return *p.DisplayName
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=50"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}
