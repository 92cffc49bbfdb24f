package game

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthenticatedStr      = "unauthenticated"
	ErrInvalidRequestFormatStr = "invalid-request-format"
	ErrRoomNotFoundStr         = "room-not-found"
	ErrPlaylistNotFoundStr     = "playlist-not-found"
	ErrUserNotFoundStr         = "user-not-found"
	ErrUnauthorizedStr         = "unauthorized"
	ErrMissingFieldsStr        = "missing-required-fields"
	ErrUnknownActionStr        = "unknown-action"
	ErrInvalidElapsedStr       = "invalid-elapsed-ms"
	ErrTooManyGuessesStr       = "too-many-guesses"
	ErrServerTimeoutStr        = "server-timeout"
	ErrUnknownStr              = "unknown-error"
)

type RoomService interface {
	CreateRoom(ctx context.Context, hostId, playlistId string, settings domain.Settings) (string, error)
	GetRoom(ctx context.Context, roomId string) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.RoomListing, error)
	Apply(ctx context.Context, roomId string, action Action, callerId string, payload GuessPayload) (*GuessResult, error)
	DeleteRoom(ctx context.Context, roomId, callerId string) error
}

type gameHandler struct {
	rooms RoomService
}

func NewGameHandler(rooms RoomService) *gameHandler {
	return &gameHandler{rooms: rooms}
}

type roomSnapshot struct {
	Id               string            `json:"id"`
	HostId           string            `json:"hostId"`
	HostName         string            `json:"hostName"`
	PlaylistId       string            `json:"playlistId"`
	PlaylistName     string            `json:"playlistName"`
	Status           domain.RoomStatus `json:"status"`
	Finished         bool              `json:"finished"`
	CurrentSongIndex int               `json:"currentSongIndex"`
	RoundCount       int               `json:"roundCount"`
	CurrentSong      *domain.Song      `json:"currentSong"`
	Songs            []domain.Song     `json:"songs"`
	Players          []domain.Player   `json:"players"`
	Settings         domain.Settings   `json:"settings"`
	RoundStartedAt   time.Time         `json:"roundStartedAt"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func newRoomSnapshot(r domain.Room) roomSnapshot {
	snap := roomSnapshot{
		Id:               r.Id,
		HostId:           r.HostId,
		HostName:         r.HostName,
		PlaylistId:       r.PlaylistId,
		PlaylistName:     r.PlaylistName,
		Status:           r.EffectiveStatus(),
		Finished:         r.IsFinished(),
		CurrentSongIndex: r.CurrentSongIndex,
		RoundCount:       r.RoundCount(),
		Songs:            r.Songs,
		Players:          r.Leaderboard(),
		Settings:         r.Settings,
		RoundStartedAt:   r.RoundStartedAt,
		CreatedAt:        r.CreatedAt,
	}
	if song, ok := r.CurrentSong(); ok {
		snap.CurrentSong = &song
	}
	return snap
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged with the request context.
func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		ctx.String(http.StatusNotFound, ErrRoomNotFoundStr)
	case errors.Is(err, domain.ErrPlaylistNotFound):
		ctx.String(http.StatusNotFound, ErrPlaylistNotFoundStr)
	case errors.Is(err, domain.ErrUserNotFound):
		ctx.String(http.StatusUnauthorized, ErrUserNotFoundStr)
	case errors.Is(err, domain.ErrUnauthorized):
		ctx.String(http.StatusForbidden, ErrUnauthorizedStr)
	case errors.Is(err, ErrUnknownAction):
		ctx.String(http.StatusBadRequest, ErrUnknownActionStr)
	case errors.Is(err, ErrBadElapsed):
		ctx.String(http.StatusBadRequest, ErrInvalidElapsedStr)
	case errors.Is(err, ErrBadSettings):
		ctx.String(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		ctx.String(http.StatusBadRequest, ErrMissingFieldsStr)
	case errors.Is(err, ErrTooManyGuesses):
		ctx.String(http.StatusTooManyRequests, ErrTooManyGuessesStr)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
	case errors.Is(err, context.Canceled):
		ctx.Status(499) // http code for "Client Closed Request"
	default:
		log.Error().Err(err).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Str("caller", ctx.GetString("id")).
			Msg("unexpected room service error")
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
	}
	ctx.Abort()
}

func requireCaller(ctx *gin.Context) (string, bool) {
	id := ctx.GetString("id")
	if id == "" {
		ctx.String(http.StatusUnauthorized, ErrUnauthenticatedStr)
		ctx.Abort()
		return "", false
	}
	return id, true
}

func (h *gameHandler) CreateRoomHandler(ctx *gin.Context) {
	id, ok := requireCaller(ctx)
	if !ok {
		return
	}

	var body struct {
		PlaylistId string          `json:"playlistId"`
		Settings   domain.Settings `json:"settings"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}

	roomId, err := h.rooms.CreateRoom(ctx.Request.Context(), id, body.PlaylistId, body.Settings)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"id": roomId})
}

func (h *gameHandler) ListRoomsHandler(ctx *gin.Context) {
	rooms, err := h.rooms.ListRooms(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rooms)
}

func (h *gameHandler) GetRoomHandler(ctx *gin.Context) {
	room, err := h.rooms.GetRoom(ctx.Request.Context(), ctx.Param("roomid"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newRoomSnapshot(room))
}

func (h *gameHandler) ActionHandler(ctx *gin.Context) {
	id, ok := requireCaller(ctx)
	if !ok {
		return
	}

	var body struct {
		Action    string `json:"action"`
		Guess     string `json:"guess"`
		ElapsedMs *int64 `json:"elapsedMs"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}

	action, err := ParseAction(body.Action)
	if err != nil {
		writeError(ctx, err)
		return
	}

	payload := GuessPayload{Guess: body.Guess, ElapsedMs: body.ElapsedMs}
	res, err := h.rooms.Apply(ctx.Request.Context(), ctx.Param("roomid"), action, id, payload)
	if err != nil {
		writeError(ctx, err)
		return
	}

	if res != nil {
		ctx.JSON(http.StatusOK, res)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *gameHandler) DeleteRoomHandler(ctx *gin.Context) {
	id, ok := requireCaller(ctx)
	if !ok {
		return
	}

	if err := h.rooms.DeleteRoom(ctx.Request.Context(), ctx.Param("roomid"), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes mounts the room endpoints on a group that already runs the
// auth middleware.
func (h *gameHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/rooms", h.ListRoomsHandler)
	group.POST("/rooms", h.CreateRoomHandler)
	group.GET("/rooms/:roomid", h.GetRoomHandler)
	group.PUT("/rooms/:roomid", h.ActionHandler)
	group.DELETE("/rooms/:roomid", h.DeleteRoomHandler)
}
