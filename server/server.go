// Package server exposes gomoku sessions over http and websockets.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
	"github.com/zeu5/fights/config"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/records"
	"github.com/zeu5/fights/types"
)

// GameStore keeps finished games, *records.Store implements it
type GameStore interface {
	Record(context.Context, records.Game) (int64, error)
	List(context.Context, int) ([]records.Game, error)
	Stats(context.Context) (map[string]int, error)
}

var _ GameStore = &records.Store{}

type Options struct {
	Config config.Config
	Logger log.Logger
	// Mirror is optional
	Mirror Mirror
	// Store is optional, finished games are dropped without one
	Store GameStore
}

type Server struct {
	Addr string

	logger   log.Logger
	sessions *SessionManager
	mirror   Mirror
	store    GameStore
	upgrader websocket.Upgrader
	shutdown time.Duration

	router *gin.Engine
	server *http.Server
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	mirror := opts.Mirror
	if mirror == nil {
		mirror = nopMirror{}
	}
	s := &Server{
		Addr:     opts.Config.Server.Addr,
		logger:   log.With(logger, "component", "server"),
		sessions: NewSessionManager(opts.Config.Gomoku),
		mirror:   mirror,
		store:    opts.Store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: opts.Config.WebSocket.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		shutdown: opts.Config.Server.ShutdownTimeout,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	r.GET("/", s.handleHello)
	r.GET("/healthz", s.handleHealth)
	r.GET("/rooms", s.handleRooms)
	r.POST("/sessions", s.handleCreate)
	r.GET("/sessions", s.handleList)
	r.GET("/sessions/:id", s.handleGet)
	r.DELETE("/sessions/:id", s.handleDelete)
	r.POST("/sessions/:id/reset", s.handleReset)
	r.POST("/sessions/:id/step", s.handleStep)
	r.GET("/sessions/:id/ws", s.handleSocket)
	r.GET("/games", s.handleGames)
	r.GET("/games/stats", s.handleStats)
	s.router = r
	s.server = &http.Server{
		Addr:    s.Addr,
		Handler: r,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Run serves until ctx is cancelled, then shuts the server down
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("msg", "listening", "addr", s.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := s.shutdown
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.server.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level.Debug(logger).Log(
			"msg", "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleHello(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) handleRooms(c *gin.Context) {
	rooms := make([]roomResponse, 0)
	for _, session := range s.sessions.List() {
		view := session.View()
		rooms = append(rooms, roomResponse{
			ID:           view.ID,
			Participants: view.Participants,
			Phase:        view.Phase,
		})
	}
	c.JSON(http.StatusOK, rooms)
}

func (s *Server) handleCreate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request"})
		return
	}
	req := createRequest{}
	if len(body) > 0 {
		if err := decode(createRequestSchema, body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	session, err := s.sessions.Create(config.GomokuConfig{
		Width:        req.Width,
		Height:       req.Height,
		WinCondition: req.WinCondition,
		Participants: req.Participants,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level.Info(s.logger).Log("msg", "session created", "session", session.ID)
	s.publish(c.Request.Context(), session)
	c.JSON(http.StatusCreated, gin.H{"id": session.ID})
}

func (s *Server) handleList(c *gin.Context) {
	views := make([]SessionView, 0)
	for _, session := range s.sessions.List() {
		views = append(views, session.View())
	}
	c.JSON(http.StatusOK, views)
}

// session looks up the :id param, writing a 404 when it is unknown
func (s *Server) session(c *gin.Context) (*Session, bool) {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return session, true
}

func (s *Server) handleGet(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.View())
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if err := s.sessions.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := s.mirror.Remove(c.Request.Context(), id); err != nil {
		level.Warn(s.logger).Log("msg", "failed to remove mirrored session", "session", id, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *Server) handleReset(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	res := session.Reset()
	s.publish(c.Request.Context(), session)
	c.JSON(http.StatusOK, newResultResponse(res))
}

func (s *Server) handleStep(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request"})
		return
	}
	req := stepRequest{}
	if err := decode(stepRequestSchema, body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := s.step(c.Request.Context(), session, types.Participant{ID: req.Participant}, req.Action)
	c.JSON(http.StatusOK, newStepResponse(out))
}

// step applies the move and propagates the new state to the mirror and,
// once the game ends, to the store
func (s *Server) step(ctx context.Context, session *Session, p types.Participant, a gomoku.Action) StepOutcome {
	out := session.Step(p, a)
	if !out.Accepted {
		level.Debug(s.logger).Log("msg", "move ignored", "session", session.ID, "participant", p, "action", a, "reason", out.Reason)
		return out
	}
	view := s.publish(ctx, session)
	if out.Finished {
		s.record(ctx, view)
	}
	return out
}

func (s *Server) publish(ctx context.Context, session *Session) SessionView {
	view := session.View()
	if err := s.mirror.Publish(ctx, view); err != nil {
		level.Warn(s.logger).Log("msg", "failed to mirror session", "session", session.ID, "err", err)
	}
	return view
}

func (s *Server) record(ctx context.Context, view SessionView) {
	winner := ""
	if view.Winner != nil {
		winner = view.Winner.ID
	}
	level.Info(s.logger).Log("msg", "game finished", "session", view.ID, "winner", winner, "moves", view.Moves)
	if s.store == nil {
		return
	}
	_, err := s.store.Record(ctx, records.Game{
		SessionID:    view.ID,
		Width:        view.Width,
		Height:       view.Height,
		WinCondition: view.WinCondition,
		Winner:       winner,
		Moves:        view.Moves,
		Board:        view.Result.State,
		FinishedAt:   time.Now(),
	})
	if err != nil {
		level.Error(s.logger).Log("msg", "failed to record game", "session", view.ID, "err", err)
	}
}

func (s *Server) handleGames(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game records are disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	games, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) handleStats(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game records are disabled"})
		return
	}
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
