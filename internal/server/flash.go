package server

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/notify"
)

const (
	flashSession = "pressroom_flash"
	flashKey     = "notification"
)

// flash is the notification carried across a form redirect. Only the
// latest one is kept.
type flash = notify.Notification

func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, typ notify.Type, title, message string) {
	sess, err := s.flashes.Get(r, flashSession)
	if err != nil {
		s.log.Debug("discarding unreadable flash cookie", zap.Error(err))
	}
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(flash{Type: typ, Title: title, Message: message})
	if err != nil {
		s.log.Error("encode flash", zap.Error(err))
		return
	}
	sess.Values[flashKey] = string(b)
	if err := sess.Save(r, w); err != nil {
		s.log.Error("save flash", zap.Error(err))
	}
}

// popFlash returns and clears the pending notification, if any. It must
// run before the response header is written.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	sess, err := s.flashes.Get(r, flashSession)
	if err != nil {
		return nil
	}
	raw, ok := sess.Values[flashKey].(string)
	if !ok {
		return nil
	}
	delete(sess.Values, flashKey)
	if err := sess.Save(r, w); err != nil {
		s.log.Error("clear flash", zap.Error(err))
	}
	var f flash
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(raw, &f); err != nil {
		return nil
	}
	return &f
}
