package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"teamplayer/cache"
	"teamplayer/config"
	"teamplayer/core/auth"
	"teamplayer/core/room"
	"teamplayer/db"
	"teamplayer/logger"
	"teamplayer/repository"
	"teamplayer/storage"
)

// Start wires the application together and runs the HTTP server until
// SIGINT or SIGTERM.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
	})
	auth.SetSecret(cfg.JWTSecret)

	if err := db.ConnectGorm(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGorm()

	if err := db.Migrate(db.GormDB); err != nil {
		logger.Fatal("failed to migrate database", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	store, cleanup, err := buildMediaStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize media store", logger.ErrorField(err))
	}
	if cleanup != nil {
		defer cleanup()
	}

	userRepo := repository.NewGormUserRepository(db.GormDB)
	roomRepo := repository.NewGormRoomRepository(db.GormDB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)
	trackRepo := repository.NewGormTrackRepository(db.GormDB)
	chatRepo := repository.NewGormChatRepository(db.GormDB)

	registry := room.NewRegistry()
	streamer := room.NewStreamer(registry, store, cfg.ChunkSize)
	chatService := room.NewChatService(registry, chatRepo)
	playbackService := room.NewPlaybackService(registry, streamer)
	roomService := room.NewService(roomRepo, userRepo)
	presence := cache.NewRoomPresence()

	userHandler := NewUserHandler(userRepo)
	roomHandler := NewRoomHandler(roomService)
	playlistHandler := NewPlaylistHandler(playlistRepo, trackRepo)
	chatHandler := NewChatHandler(chatService, presence)
	streamHandler := NewStreamHandler(playbackService, presence)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Users
	router.HandleFunc("/api/users/register", userHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/login", userHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/profile", AuthMiddleware(userHandler.ProfileHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/profile", AuthMiddleware(userHandler.UpdateHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{user_id}", AuthMiddleware(userHandler.GetUserHandler)).Methods(http.MethodGet)

	// Rooms
	router.HandleFunc("/api/rooms", AuthMiddleware(roomHandler.CreateRoomHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms", AuthMiddleware(roomHandler.ListJoinedHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/public", AuthMiddleware(roomHandler.ListPublicHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/search", AuthMiddleware(roomHandler.SearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/rating", AuthMiddleware(roomHandler.RatingHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/join", AuthMiddleware(roomHandler.JoinRoomHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/join-code", AuthMiddleware(roomHandler.JoinByCodeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/{room_id}/members", AuthMiddleware(roomHandler.ListMembersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/{room_id}/online", AuthMiddleware(streamHandler.OnlineUsersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/{room_id}/dj", AuthMiddleware(roomHandler.SetDJHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/rooms/{room_id}/leave", AuthMiddleware(roomHandler.LeaveRoomHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/{room_id}/kick", AuthMiddleware(roomHandler.KickHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/{room_id}/playlist", AuthMiddleware(roomHandler.PlaylistIDHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/{room_id}", AuthMiddleware(roomHandler.CloseRoomHandler)).Methods(http.MethodDelete)

	// Playlists and track storage
	router.HandleFunc("/api/playlists", AuthMiddleware(playlistHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists", AuthMiddleware(playlistHandler.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/storage", AuthMiddleware(playlistHandler.StoreTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{playlist_id}/tracks", AuthMiddleware(playlistHandler.PlaylistTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{playlist_id}/tracks", AuthMiddleware(playlistHandler.AddTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{playlist_id}/tracks", AuthMiddleware(playlistHandler.RemoveTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{playlist_id}", AuthMiddleware(playlistHandler.RemovePlaylistHandler)).Methods(http.MethodDelete)

	// Chat
	router.HandleFunc("/api/chats/{room_id}", AuthMiddleware(chatHandler.ChatHistoryHandler)).Methods(http.MethodGet)

	// Websockets
	router.HandleFunc("/ws/rooms/{room_id}/chat", AuthMiddleware(chatHandler.ChatSocketHandler))
	router.HandleFunc("/ws/rooms/{room_id}/stream", AuthMiddleware(streamHandler.StreamSocketHandler))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", logger.ErrorField(err))
	}
}

// buildMediaStore selects the track source from configuration.
func buildMediaStore(cfg *config.Config) (room.MediaStore, func() error, error) {
	switch cfg.MediaBackend {
	case "minio":
		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		library, err := storage.NewLocalLibrary(cfg.MediaDir)
		if err != nil {
			return nil, nil, err
		}
		return library, library.Close, nil
	}
}
