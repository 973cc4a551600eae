package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/mentorlink/internal/adapters/realtime"
	"github.com/okian/mentorlink/internal/domain/model"
)

// SendChat relays a direct message. The receiver gets receive-message and the
// sender gets message-sent. Only verified users can receive messages.
func (s *Service) SendChat(ctx context.Context, senderID, receiverID, text string) (model.ChatMessage, error) {
	if err := s.ready(); err != nil {
		return model.ChatMessage{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" || receiverID == "" {
		return model.ChatMessage{}, fmt.Errorf("%w: receiver and text are required", ErrInvalidRequest)
	}
	if receiverID == senderID {
		return model.ChatMessage{}, fmt.Errorf("%w: cannot message yourself", ErrInvalidRequest)
	}

	if _, err := s.store.Get(ctx, senderID); err != nil {
		return model.ChatMessage{}, translate(err)
	}
	receiver, err := s.store.Get(ctx, receiverID)
	if err != nil {
		return model.ChatMessage{}, translate(err)
	}
	if !receiver.Verified {
		return model.ChatMessage{}, ErrReceiverUnverified
	}

	msg := model.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		TS:         s.now(),
	}
	s.publish(ctx, receiverID, realtime.TypeReceiveMessage, msg)
	s.publish(ctx, senderID, realtime.TypeMessageSent, msg)
	return msg, nil
}

// ChatStudents lists the people userID can talk to: verified profiles first,
// then by profile completion.
func (s *Service) ChatStudents(ctx context.Context, userID string) ([]*model.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Profile, 0, len(all))
	for _, p := range all {
		if p.ID != userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Verified != out[j].Verified {
			return out[i].Verified
		}
		return out[i].ProfileCompletion > out[j].ProfileCompletion
	})
	if len(out) > chatStudentsLimit {
		out = out[:chatStudentsLimit]
	}
	return out, nil
}
