package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"colonyecon.ai/internal/protocol"
	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/tuning"
)

// RunSink receives every successfully resolved model.
type RunSink interface {
	RecordRun(runID string, m *model.Model)
}

type Server struct {
	cats  *catalogs.Catalogs
	tune  tuning.Tuning
	log   *log.Logger
	sinks []RunSink

	upgrader websocket.Upgrader
}

func NewServer(cats *catalogs.Catalogs, tune tuning.Tuning, logger *log.Logger, sinks ...RunSink) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		cats:  cats,
		tune:  tune,
		log:   logger,
		sinks: sinks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID := s.handshake(conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan []byte, 8)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop. Requests on one connection are resolved in order.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			reply := s.handle(msg)
			b, err := json.Marshal(reply)
			if err != nil {
				s.log.Printf("session %s: encode reply: %v", sessionID, err)
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handle turns one inbound message into a RESOLVED or ERROR reply.
func (s *Server) handle(msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.Type != protocol.TypeResolve {
		return protocol.NewError(base.ReqID, protocol.ErrProtoBadRequest, "expected RESOLVE, got "+base.Type)
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(base.ReqID, protocol.ErrProtoVersion, "bad protocol_version")
	}
	if err := protocol.ValidateResolve(msg); err != nil {
		return protocol.NewError(base.ReqID, protocol.ErrBadRequest, err.Error())
	}
	var req protocol.ResolveMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return protocol.NewError(base.ReqID, protocol.ErrBadRequest, err.Error())
	}

	m, err := model.Build(req.System, s.cats, s.tune, model.Options{
		UseIncomplete: req.UseIncomplete,
		Lenient:       req.Lenient,
		BuildOrder:    req.BuildOrder,
		Logger:        s.log,
	})
	if err != nil {
		var unk *catalogs.UnknownSiteTypeError
		if errors.As(err, &unk) {
			e := protocol.NewError(req.ReqID, protocol.ErrUnknownSiteType, err.Error())
			e.Suggestion = unk.Suggestion
			return e
		}
		s.log.Printf("resolve %s: %v", req.System.ID, err)
		return protocol.NewError(req.ReqID, protocol.ErrInternal, "resolve failed")
	}

	view := m.View()
	resp := protocol.ResolvedMsg{
		Type:            protocol.TypeResolved,
		ProtocolVersion: protocol.Version,
		ReqID:           req.ReqID,
		RunID:           uuid.NewString(),
		Digest:          m.Digest(),
		System:          view,
	}
	if req.SiteID != "" {
		found := false
		for i := range view.Sites {
			if view.Sites[i].ID == req.SiteID {
				resp.Site = &view.Sites[i]
				found = true
				break
			}
		}
		if !found {
			return protocol.NewError(req.ReqID, protocol.ErrSiteNotFound, "site "+req.SiteID+" not in system")
		}
	}
	for _, sink := range s.sinks {
		sink.RecordRun(resp.RunID, m)
	}
	return resp
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	sessionID = uuid.NewString()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		Catalogs: protocol.CatalogDigests{
			SiteTypesDigest: s.cats.Sites.Digest,
			SiteTypeCount:   len(s.cats.Sites.Types),
			TuningDigest:    s.tune.Digest(),
			RulesVersion:    s.tune.RulesVersion,
		},
	}
	if err := writeJSON(conn, welcome); err != nil {
		return ""
	}
	s.log.Printf("session %s: %s connected", sessionID, hello.ClientName)
	return sessionID
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
