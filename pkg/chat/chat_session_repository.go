package chat

import (
	"context"
	"errors"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ChatSessionRepository interface {
		GetOrCreateSession(ctx context.Context, phone string) (*entities.ChatSession, error)
		GetSessionByPhone(ctx context.Context, phone string) (*entities.ChatSession, error)
		GetSessions(ctx context.Context, page, limit int) ([]*entities.ChatSession, int64, error)
		SaveSession(ctx context.Context, session *entities.ChatSession) error
		DeleteSession(ctx context.Context, phone string) error
		MarkMessageProcessed(ctx context.Context, messageID, phone string) (bool, error)

		GetItems(ctx context.Context, sessionID uuid.UUID) ([]entities.ChatSessionItem, error)
		AddItem(ctx context.Context, sessionID, productID uuid.UUID, quantity int) error
		RemoveItem(ctx context.Context, sessionID, productID uuid.UUID) error
		ClearItems(ctx context.Context, sessionID uuid.UUID) error
	}

	chatSessionRepository struct {
		db *gorm.DB
	}
)

func NewChatSessionRepository(db *gorm.DB) ChatSessionRepository {
	return &chatSessionRepository{db: db}
}

func (r *chatSessionRepository) GetOrCreateSession(ctx context.Context, phone string) (*entities.ChatSession, error) {
	session, err := r.GetSessionByPhone(ctx, phone)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = &entities.ChatSession{
		Phone:   phone,
		State:   domain.ChatStateIdle,
		Options: []string{},
	}
	// a failed insert aborts a postgres transaction, so a concurrent create
	// for the same phone is skipped and the winner's row reloaded
	if err := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(session).Error; err != nil {
		return nil, err
	}
	return r.GetSessionByPhone(ctx, phone)
}

func (r *chatSessionRepository) GetSessionByPhone(ctx context.Context, phone string) (*entities.ChatSession, error) {
	var session entities.ChatSession
	if err := database.Conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Items.Product").
		Where("phone = ?", phone).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatSessionRepository) GetSessions(ctx context.Context, page, limit int) ([]*entities.ChatSession, int64, error) {
	var sessions []*entities.ChatSession
	var count int64

	query := database.Conn(ctx, r.db).Model(&entities.ChatSession{})
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Items.Product").
		Offset((page - 1) * limit).Limit(limit).
		Order("updated_at desc").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, count, nil
}

func (r *chatSessionRepository) SaveSession(ctx context.Context, session *entities.ChatSession) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(session).Error
}

func (r *chatSessionRepository) DeleteSession(ctx context.Context, phone string) error {
	session, err := r.GetSessionByPhone(ctx, phone)
	if err != nil {
		return err
	}
	conn := database.Conn(ctx, r.db)
	if err := conn.Where("session_id = ?", session.ID).Delete(&entities.ChatSessionItem{}).Error; err != nil {
		return err
	}
	return conn.Delete(session).Error
}

// MarkMessageProcessed records messageID and reports whether it was new. A
// false result means the message was already handled.
func (r *chatSessionRepository) MarkMessageProcessed(ctx context.Context, messageID, phone string) (bool, error) {
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.ProcessedMessage{MessageID: messageID, Phone: phone})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *chatSessionRepository) GetItems(ctx context.Context, sessionID uuid.UUID) ([]entities.ChatSessionItem, error) {
	var items []entities.ChatSessionItem
	if err := database.Conn(ctx, r.db).
		Preload("Product").
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem adds quantity of a product to the cart, merging with an existing
// line for the same product.
func (r *chatSessionRepository) AddItem(ctx context.Context, sessionID, productID uuid.UUID, quantity int) error {
	conn := database.Conn(ctx, r.db)

	var item entities.ChatSessionItem
	err := conn.Where("session_id = ? AND product_id = ?", sessionID, productID).First(&item).Error
	switch {
	case err == nil:
		if item.Quantity+quantity > domain.MaxItemQuantity {
			return domain.ErrInvalidQuantity
		}
		return conn.Model(&item).Update("quantity", item.Quantity+quantity).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return conn.Omit(clause.Associations).Create(&entities.ChatSessionItem{
			SessionID: sessionID,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	default:
		return err
	}
}

func (r *chatSessionRepository) RemoveItem(ctx context.Context, sessionID, productID uuid.UUID) error {
	return database.Conn(ctx, r.db).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		Delete(&entities.ChatSessionItem{}).Error
}

func (r *chatSessionRepository) ClearItems(ctx context.Context, sessionID uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("session_id = ?", sessionID).Delete(&entities.ChatSessionItem{}).Error
}
