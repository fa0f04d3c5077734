package chat

import (
	"context"
	"errors"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"
	"WA-Order-Bot/pkg/whatsapp"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	ChatService interface {
		HandleIncomingMessage(ctx context.Context, msg domain.IncomingMessage) error
		GetSessions(ctx context.Context, page, limit int) ([]domain.ChatSessionResponse, int64, error)
		GetSessionByPhone(ctx context.Context, phone string) (domain.ChatSessionResponse, error)
		ResetSession(ctx context.Context, phone string) error
	}

	chatService struct {
		transactor        database.Transactor
		sessionRepository ChatSessionRepository
		processor         MessageProcessor
		whatsapp          whatsapp.WhatsAppClient
		locks             *phoneLocks
	}
)

func NewChatService(
	transactor database.Transactor,
	sessionRepository ChatSessionRepository,
	processor MessageProcessor,
	whatsappClient whatsapp.WhatsAppClient,
) ChatService {
	return &chatService{
		transactor:        transactor,
		sessionRepository: sessionRepository,
		processor:         processor,
		whatsapp:          whatsappClient,
		locks:             newPhoneLocks(),
	}
}

// HandleIncomingMessage runs one inbound message through the conversation.
// Messages from the same sender are handled one at a time, and a message id
// that was already handled is ignored without a reply.
func (s *chatService) HandleIncomingMessage(ctx context.Context, msg domain.IncomingMessage) error {
	log := logrus.WithFields(logrus.Fields{"phone": msg.From, "message_id": msg.ID, "type": msg.Type})

	unlock := s.locks.lock(msg.From)
	defer unlock()

	var (
		reply     string
		duplicate bool
	)
	err := s.transactor.Transaction(ctx, func(ctx context.Context) error {
		if msg.ID != "" {
			fresh, err := s.sessionRepository.MarkMessageProcessed(ctx, msg.ID, msg.From)
			if err != nil {
				return err
			}
			if !fresh {
				duplicate = true
				return nil
			}
		}

		session, err := s.sessionRepository.GetOrCreateSession(ctx, msg.From)
		if err != nil {
			return err
		}

		previousState := session.State
		session.LastMessageID = msg.ID
		if msg.ProfileName != "" {
			session.CustomerName = msg.ProfileName
		}

		reply, err = s.processor.Process(ctx, session, msg)
		if err != nil {
			return err
		}
		if err := s.sessionRepository.SaveSession(ctx, session); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{"from_state": previousState, "to_state": session.State}).Info("message processed")
		return nil
	})
	if err != nil {
		log.WithError(err).Error("failed to process message")
		return s.reply(ctx, log, msg.From, replyInternalError, err)
	}
	if duplicate {
		log.Debug("duplicate delivery ignored")
		return nil
	}
	return s.reply(ctx, log, msg.From, reply, nil)
}

func (s *chatService) reply(ctx context.Context, log *logrus.Entry, to, body string, cause error) error {
	if err := s.whatsapp.SendText(ctx, to, body); err != nil {
		log.WithError(err).Error("failed to send reply")
		return errors.Join(cause, err)
	}
	return cause
}

func (s *chatService) GetSessions(ctx context.Context, page, limit int) ([]domain.ChatSessionResponse, int64, error) {
	sessions, count, err := s.sessionRepository.GetSessions(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, toChatSessionResponse(session))
	}
	return result, count, nil
}

func (s *chatService) GetSessionByPhone(ctx context.Context, phone string) (domain.ChatSessionResponse, error) {
	session, err := s.sessionRepository.GetSessionByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ChatSessionResponse{}, domain.ErrChatSessionNotFound
		}
		return domain.ChatSessionResponse{}, err
	}
	return toChatSessionResponse(session), nil
}

func (s *chatService) ResetSession(ctx context.Context, phone string) error {
	if err := s.sessionRepository.DeleteSession(ctx, phone); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrChatSessionNotFound
		}
		return err
	}
	logrus.WithField("phone", phone).Info("chat session reset")
	return nil
}

func toChatSessionResponse(session *entities.ChatSession) domain.ChatSessionResponse {
	res := domain.ChatSessionResponse{
		ID:           session.ID.String(),
		Phone:        session.Phone,
		CustomerName: session.CustomerName,
		State:        session.State,
		Items:        make([]domain.ChatCartItemResponse, 0, len(session.Items)),
		CartTotal:    decimal.Zero,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
	for _, item := range session.Items {
		line := domain.ChatCartItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.UnitPrice = item.Product.Price
			line.Subtotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			res.CartTotal = res.CartTotal.Add(line.Subtotal)
		}
		res.Items = append(res.Items, line)
	}
	return res
}
