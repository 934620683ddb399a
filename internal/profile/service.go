// Package profile manages account details and the baby profile, and is
// the source of the due date used for gestational tracking.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloom/internal/auth"

	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidDate  = errors.New("invalid date, want YYYY-MM-DD")
)

type BabyInfo struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	UserID     uint64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Name       string     `gorm:"type:text;not null;default:''" json:"name"`
	DueDate    *time.Time `gorm:"type:date" json:"due_date"`
	Gender     string     `gorm:"type:text;not null;default:''" json:"gender"`
	DoctorName string     `gorm:"type:text;not null;default:''" json:"doctor_name"`
}

// ProfileUpdate lists the only account fields a user may change here. Nil
// leaves a field untouched; an empty DueDate clears it.
type ProfileUpdate struct {
	FullName *string
	Country  *string
	DueDate  *string
}

type BabyUpdate struct {
	Name       *string
	DueDate    *string
	Gender     *string
	DoctorName *string
}

type Service struct {
	DB *gorm.DB
}

func (s *Service) Get(ctx context.Context, userID uint64) (auth.User, error) {
	var u auth.User
	if err := s.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.User{}, ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, userID uint64, in ProfileUpdate) (auth.User, error) {
	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Country != nil {
		updates["country"] = strings.TrimSpace(*in.Country)
	}
	if in.DueDate != nil {
		due, err := ParseDate(*in.DueDate)
		if err != nil {
			return auth.User{}, err
		}
		updates["due_date"] = due
	}

	if len(updates) > 0 {
		res := s.DB.WithContext(ctx).Model(&auth.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return auth.User{}, fmt.Errorf("update user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return auth.User{}, ErrUserNotFound
		}
	}
	return s.Get(ctx, userID)
}

// GetBabyInfo returns a zero BabyInfo when none was saved yet.
func (s *Service) GetBabyInfo(ctx context.Context, userID uint64) (BabyInfo, error) {
	var info BabyInfo
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BabyInfo{UserID: userID}, nil
	}
	if err != nil {
		return BabyInfo{}, fmt.Errorf("load baby info: %w", err)
	}
	return info, nil
}

func (s *Service) UpsertBabyInfo(ctx context.Context, userID uint64, in BabyUpdate) (BabyInfo, error) {
	var out BabyInfo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info := BabyInfo{UserID: userID}
		if err := tx.Where("user_id = ?", userID).First(&info).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if in.Name != nil {
			info.Name = strings.TrimSpace(*in.Name)
		}
		if in.Gender != nil {
			info.Gender = strings.TrimSpace(*in.Gender)
		}
		if in.DoctorName != nil {
			info.DoctorName = strings.TrimSpace(*in.DoctorName)
		}
		if in.DueDate != nil {
			due, err := ParseDate(*in.DueDate)
			if err != nil {
				return err
			}
			info.DueDate = due
		}

		if err := tx.Save(&info).Error; err != nil {
			return err
		}
		out = info
		return nil
	})
	if errors.Is(err, ErrInvalidDate) {
		return BabyInfo{}, err
	}
	if err != nil {
		return BabyInfo{}, fmt.Errorf("save baby info: %w", err)
	}
	return out, nil
}

// DueDate prefers the account's due date and falls back to the baby
// profile's. It returns nil when neither is set.
func (s *Service) DueDate(ctx context.Context, userID uint64) (*time.Time, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.DueDate != nil {
		return u.DueDate, nil
	}
	info, err := s.GetBabyInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return info.DueDate, nil
}

// ParseDate reads a YYYY-MM-DD date; blank input means "no date".
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}
