package auth

import (
	"context"

	"gorm.io/gorm"

	authEntity "fbadash/model/entity/auth"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindActiveToken returns a non-revoked token by its token string.
func (r *AuthRepository) FindActiveToken(ctx context.Context, token string) (*authEntity.APIToken, error) {
	var t authEntity.APIToken
	err := r.db.WithContext(ctx).Where("token = ? AND revoked = ?", token, false).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AuthRepository) CreateToken(ctx context.Context, t *authEntity.APIToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// RevokeToken marks the token revoked. Unknown tokens return gorm.ErrRecordNotFound.
func (r *AuthRepository) RevokeToken(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).Model(&authEntity.APIToken{}).Where("token = ?", token).Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
