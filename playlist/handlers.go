package playlist

import (
	"context"
	"errors"
	"net/http"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthenticatedStr      = "unauthenticated"
	ErrInvalidRequestFormatStr = "invalid-request-format"
	ErrPlaylistNotFoundStr     = "playlist-not-found"
	ErrUserNotFoundStr         = "user-not-found"
	ErrUnauthorizedStr         = "unauthorized"
	ErrMissingNameStr          = "missing-playlist-name"
	ErrNameTooLongStr          = "playlist-name-too-long"
	ErrNoSongsStr              = "empty-playlist"
	ErrTooManySongsStr         = "too-many-songs"
	ErrInvalidSongStr          = "invalid-song"
	ErrUnknownSourceStr        = "unknown-song-source"
	ErrServerTimeoutStr        = "server-timeout"
	ErrUnknownStr              = "unknown-error"
)

type PlaylistService interface {
	Create(ctx context.Context, ownerId, name string, songs []domain.Song) (domain.Playlist, error)
	List(ctx context.Context, ownerId string) ([]domain.Playlist, error)
	Get(ctx context.Context, id string) (domain.Playlist, error)
	Delete(ctx context.Context, id, callerId string) error
}

type playlistHandler struct {
	playlists PlaylistService
}

func NewPlaylistHandler(playlists PlaylistService) *playlistHandler {
	return &playlistHandler{playlists: playlists}
}

func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPlaylistNotFound):
		ctx.String(http.StatusNotFound, ErrPlaylistNotFoundStr)
	case errors.Is(err, domain.ErrUserNotFound):
		ctx.String(http.StatusUnauthorized, ErrUserNotFoundStr)
	case errors.Is(err, domain.ErrUnauthorized):
		ctx.String(http.StatusForbidden, ErrUnauthorizedStr)
	case errors.Is(err, ErrMissingName):
		ctx.String(http.StatusBadRequest, ErrMissingNameStr)
	case errors.Is(err, ErrNameTooLong):
		ctx.String(http.StatusBadRequest, ErrNameTooLongStr)
	case errors.Is(err, ErrNoSongs):
		ctx.String(http.StatusBadRequest, ErrNoSongsStr)
	case errors.Is(err, ErrTooManySongs):
		ctx.String(http.StatusBadRequest, ErrTooManySongsStr)
	case errors.Is(err, ErrInvalidSong):
		ctx.String(http.StatusBadRequest, ErrInvalidSongStr)
	case errors.Is(err, ErrUnknownSource):
		ctx.String(http.StatusBadRequest, ErrUnknownSourceStr)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
	case errors.Is(err, context.Canceled):
		ctx.Status(499) // http code for "Client Closed Request"
	default:
		log.Error().Err(err).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Str("caller", ctx.GetString("id")).
			Msg("unexpected playlist service error")
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

func (h *playlistHandler) CreatePlaylistHandler(ctx *gin.Context) {
	id, ok := requireCaller(ctx)
	if !ok {
		return
	}

	var body struct {
		Name  string        `json:"name"`
		Songs []domain.Song `json:"songs"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}

	p, err := h.playlists.Create(ctx.Request.Context(), id, body.Name, body.Songs)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

func (h *playlistHandler) ListPlaylistsHandler(ctx *gin.Context) {
	id, ok := requireCaller(ctx)
	if !ok {
		return
	}

	playlists, err := h.playlists.List(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, playlists)
}

func (h *playlistHandler) GetPlaylistHandler(ctx *gin.Context) {
	p, err := h.playlists.Get(ctx.Request.Context(), ctx.Param("playlistid"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

func (h *playlistHandler) DeletePlaylistHandler(ctx *gin.Context) {
	id, ok := requireCaller(ctx)
	if !ok {
		return
	}

	if err := h.playlists.Delete(ctx.Request.Context(), ctx.Param("playlistid"), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *playlistHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/playlists", h.ListPlaylistsHandler)
	group.POST("/playlists", h.CreatePlaylistHandler)
	group.GET("/playlists/:playlistid", h.GetPlaylistHandler)
	group.DELETE("/playlists/:playlistid", h.DeletePlaylistHandler)
}
