// Package store はスプライトとエンハンス結果の永続化を担当します。
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// Store は gorm ベースの PersistenceStore 実装です。
type Store struct {
	db *gorm.DB
}

// New は既存の gorm.DB から Store を初期化します。
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db (gorm.DB) is required")
	}
	return &Store{db: db}, nil
}

// Open は SQLite データベースを開き、スキーマを移行して Store を返します。
// dsn には ":memory:" も指定できます。
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("データベースを開けませんでした: %w", err)
	}
	if err := db.AutoMigrate(&domain.SpriteRecord{}, &domain.EnhancedRecord{}); err != nil {
		return nil, fmt.Errorf("スキーマ移行に失敗しました: %w", err)
	}
	return New(db)
}

// CreateSprite は新しいスプライトレコードを作成して返します。
func (s *Store) CreateSprite(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
	if ownerID == "" {
		return nil, &domain.ValidationError{Field: "owner_id", Message: "オーナーIDは必須です"}
	}

	record := &domain.SpriteRecord{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Prompt:   prompt,
		ImageRef: imageRef,
		Size:     size,
		Style:    style,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("スプライトの保存に失敗しました: %w", err)
	}
	return record, nil
}

// GetSprite はオーナーのスプライトを1件取得します。
// 存在しない場合とオーナーが異なる場合はどちらも ErrSpriteNotFound です。
func (s *Store) GetSprite(ctx context.Context, ownerID, spriteID string) (*domain.SpriteRecord, error) {
	var record domain.SpriteRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", spriteID, ownerID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSpriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("スプライトの取得に失敗しました: %w", err)
	}
	return &record, nil
}

// AttachEnhanced はスプライトにエンハンス結果を 1:1 で紐づけます。
// 既にエンハンス結果を持つ場合は ErrEnhancedConflict を返し、既存レコードは変更しません。
// 同一スプライトに対する並行呼び出しはトランザクション内の存在確認と
// sprite_id の一意制約の両方で直列化されます。
func (s *Store) AttachEnhanced(ctx context.Context, spriteID, imageRef, prompt, style string, latencyMS int64) (*domain.EnhancedRecord, error) {
	record := &domain.EnhancedRecord{
		ID:        uuid.NewString(),
		SpriteID:  spriteID,
		ImageRef:  imageRef,
		Prompt:    prompt,
		Style:     style,
		LatencyMS: latencyMS,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sprite domain.SpriteRecord
		if err := tx.Where("id = ?", spriteID).First(&sprite).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSpriteNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&domain.EnhancedRecord{}).Where("sprite_id = ?", spriteID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrEnhancedConflict
		}
		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrEnhancedConflict) || errors.Is(err, domain.ErrSpriteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("エンハンス結果の保存に失敗しました: %w", err)
	}
	return record, nil
}

// HistoryEntry はスプライトと（あれば）そのエンハンス結果の対です。
type HistoryEntry struct {
	Sprite   domain.SpriteRecord
	Enhanced *domain.EnhancedRecord
}

// ListHistory はオーナーの生成履歴を新しい順で1ページ分返します。
func (s *Store) ListHistory(ctx context.Context, ownerID string, offset, limit int) ([]HistoryEntry, error) {
	if limit < 1 {
		return nil, &domain.ValidationError{Field: "limit", Message: "limit は1以上が必要です"}
	}
	if offset < 0 {
		return nil, &domain.ValidationError{Field: "offset", Message: "offset は0以上が必要です"}
	}

	var sprites []domain.SpriteRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&sprites).Error
	if err != nil {
		return nil, fmt.Errorf("履歴の取得に失敗しました: %w", err)
	}
	if len(sprites) == 0 {
		return nil, nil
	}

	ids := make([]string, len(sprites))
	for i, sp := range sprites {
		ids[i] = sp.ID
	}
	var enhanced []domain.EnhancedRecord
	if err := s.db.WithContext(ctx).Where("sprite_id IN ?", ids).Find(&enhanced).Error; err != nil {
		return nil, fmt.Errorf("エンハンス結果の取得に失敗しました: %w", err)
	}
	bySprite := make(map[string]*domain.EnhancedRecord, len(enhanced))
	for i := range enhanced {
		bySprite[enhanced[i].SpriteID] = &enhanced[i]
	}

	entries := make([]HistoryEntry, len(sprites))
	for i, sp := range sprites {
		entries[i] = HistoryEntry{Sprite: sp, Enhanced: bySprite[sp.ID]}
	}
	return entries, nil
}

// DeleteAll はオーナーの全スプライトを削除し、削除件数を返します。
// 紐づくエンハンス結果も同一トランザクションで削除されます。
func (s *Store) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&domain.SpriteRecord{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("sprite_id IN ?", ids).Delete(&domain.EnhancedRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("owner_id = ?", ownerID).Delete(&domain.SpriteRecord{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("履歴の削除に失敗しました: %w", err)
	}
	return deleted, nil
}
