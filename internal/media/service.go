// Package media lists, fetches and ingests a user's ultrasound media.
package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 6
	MaxListLimit       = 50
)

// Service answers media queries. Every list is scoped to one user.
type Service struct {
	DB    *gorm.DB
	Cache *ListCache
}

func (s *Service) ListRecent(ctx context.Context, userID uint64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxListLimit)

	return s.cached(userID, "recent:"+strconv.Itoa(limit), func() ([]Record, error) {
		var rows []Record
		err := s.DB.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at desc, id asc").
			Limit(limit).
			Find(&rows).Error
		return rows, err
	})
}

func (s *Service) ListAll(ctx context.Context, userID uint64) ([]Record, error) {
	return s.cached(userID, "all", func() ([]Record, error) {
		var rows []Record
		err := s.DB.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at asc, id asc").
			Find(&rows).Error
		return rows, err
	})
}

func (s *Service) ListByMonth(ctx context.Context, userID uint64, month int) ([]Record, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	return s.cached(userID, "month:"+strconv.Itoa(month), func() ([]Record, error) {
		var rows []Record
		err := s.DB.WithContext(ctx).
			Where("user_id = ? AND month = ?", userID, month).
			Order("id asc").
			Find(&rows).Error
		return rows, err
	})
}

// ListByMonthAndEmotion narrows ListByMonth to one emotion tag. EmotionAll
// behaves exactly like ListByMonth.
func (s *Service) ListByMonthAndEmotion(ctx context.Context, userID uint64, month int, emotion string) ([]Record, error) {
	emotion = NormalizeEmotion(emotion)
	if emotion == EmotionAll {
		return s.ListByMonth(ctx, userID, month)
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if !ValidEmotion(emotion) {
		return nil, invalid("emotion", "unknown emotion tag %q", emotion)
	}

	return s.cached(userID, "month:"+strconv.Itoa(month)+":emotion:"+emotion, func() ([]Record, error) {
		var rows []Record
		err := s.DB.WithContext(ctx).
			Where("user_id = ? AND month = ? AND emotion_tag = ?", userID, month, emotion).
			Order("id asc").
			Find(&rows).Error
		return rows, err
	})
}

func (s *Service) ListByEmotion(ctx context.Context, userID uint64, emotion string) ([]Record, error) {
	emotion = NormalizeEmotion(emotion)
	if emotion == EmotionAll {
		return s.ListAll(ctx, userID)
	}
	if !ValidEmotion(emotion) {
		return nil, invalid("emotion", "unknown emotion tag %q", emotion)
	}

	return s.cached(userID, "emotion:"+emotion, func() ([]Record, error) {
		var rows []Record
		err := s.DB.WithContext(ctx).
			Where("user_id = ? AND emotion_tag = ?", userID, emotion).
			Order("created_at asc, id asc").
			Find(&rows).Error
		return rows, err
	})
}

// GetByID returns ErrNotFound when id does not exist and ErrForbidden when
// it belongs to someone other than callerID.
func (s *Service) GetByID(ctx context.Context, id, callerID uint64) (Record, error) {
	return s.getOwned(ctx, callerID, "id = ?", id)
}

// GetByURL applies the same ownership rules as GetByID to a storage reference.
func (s *Service) GetByURL(ctx context.Context, url string, callerID uint64) (Record, error) {
	return s.getOwned(ctx, callerID, "url = ?", url)
}

func (s *Service) getOwned(ctx context.Context, callerID uint64, query string, arg any) (Record, error) {
	var rec Record
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rec.UserID != callerID {
		return Record{}, ErrForbidden
	}
	return rec, nil
}

func (s *Service) create(ctx context.Context, rec *Record) error {
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Invalidate drops cached lists for userID. Call it after any write.
func (s *Service) Invalidate(userID uint64) {
	s.Cache.Invalidate(userID)
}

func (s *Service) cached(userID uint64, query string, load func() ([]Record, error)) ([]Record, error) {
	if rows, ok := s.Cache.get(userID, query); ok {
		return rows, nil
	}
	gen := s.Cache.generation(userID)
	rows, err := load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rows == nil {
		rows = []Record{}
	}
	s.Cache.put(userID, query, gen, rows)
	return rows, nil
}

func validateMonth(month int) error {
	if month < 1 || month > 9 {
		return invalid("month", "must be between 1 and 9, got %d", month)
	}
	return nil
}
