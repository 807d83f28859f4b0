package discovery

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/udinder/udinder/internal/app"
	svcErr "github.com/udinder/udinder/internal/errors"
	"github.com/udinder/udinder/internal/repository"
	"github.com/udinder/udinder/internal/server"
)

// pageSize is the fixed page length for liked-by and match listings.
const pageSize = 20

// Service implements the Discovery HTTP API: recording likes, surfacing
// who liked a user, and the matches produced by mutual likes.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx   *app.AppContext
	likeRepo *repository.LikeRepository
}

// NewDiscoveryService creates a new Discovery service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via LikeRepository)
//   - RedisCache for counters from AppContext
func NewDiscoveryService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		likeRepo: repository.NewLikeRepository(appCtx.DB),
	}
}

type putLikeRequest struct {
	UserID      uint64 `json:"user_id"`
	LikedUserID uint64 `json:"liked_user_id"`
}

type putLikeResponse struct {
	Mutual bool `json:"mutual"`
}

type likedByResponse struct {
	Likers              []likerEntry `json:"likers"`
	NextPaginationToken *string      `json:"next_pagination_token,omitempty"`
}

type likerEntry struct {
	UserID uint64 `json:"user_id"`
}

type countResponse struct {
	Count uint64 `json:"count"`
}

type matchesResponse struct {
	Matches             []matchEntry `json:"matches"`
	NextPaginationToken *string      `json:"next_pagination_token,omitempty"`
}

type matchEntry struct {
	UserID uint64 `json:"user_id"`
}

// handlePutLike records a like and reports whether it completed a match.
//
// Behavior:
//   - Validates the pair (distinct, nonzero users).
//   - Appends a like row; the likes table keeps duplicates by design.
//   - Bumps the recipient's cached like count.
//   - On a reciprocal like, inserts mirrored match rows, one per
//     participant, each idempotent against the pair constraint.
func (s *Service) handlePutLike(w http.ResponseWriter, r *http.Request) {
	var req putLikeRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid JSON body"))
		return
	}

	s.appCtx.Logger.Debug("PutLike called", "user", req.UserID, "liked_user", req.LikedUserID)

	if req.UserID == 0 || req.LikedUserID == 0 {
		server.WriteError(w, svcErr.InvalidArgument("user_id and liked_user_id are required"))
		return
	}
	if req.UserID == req.LikedUserID {
		server.WriteError(w, svcErr.InvalidArgument("cannot like yourself"))
		return
	}

	ctx := r.Context()

	if err := s.likeRepo.CreateLike(ctx, req.UserID, req.LikedUserID); err != nil {
		s.appCtx.Logger.Error("CreateLike failed", "err", err)
		server.WriteError(w, err)
		return
	}

	// the distinct-liker count may have changed; drop the cached value
	// and let the next read recompute it from the DB
	key := s.appCtx.RedisCache.KeyForLikeCount(req.LikedUserID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Warn("like count invalidation failed", "key", key, "err", err)
	}

	mutual, err := s.likeRepo.HasLiked(ctx, req.LikedUserID, req.UserID)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	if mutual {
		if err := s.likeRepo.CreateMatch(ctx, req.UserID, req.LikedUserID); err != nil {
			server.WriteError(w, err)
			return
		}
		if err := s.likeRepo.CreateMatch(ctx, req.LikedUserID, req.UserID); err != nil {
			server.WriteError(w, err)
			return
		}
		// match counts changed for both sides
		_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForMatchCount(req.UserID))
		_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForMatchCount(req.LikedUserID))

		s.appCtx.Logger.Info("match created", "user", req.UserID, "liked_user", req.LikedUserID)
	}

	server.WriteJSON(w, http.StatusOK, putLikeResponse{Mutual: mutual})
}

// handleListLikedBy returns the users who liked the given user, newest
// first, with cursor pagination.
func (s *Service) handleListLikedBy(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	token := paginationToken(r)
	likes, nextToken, err := s.likeRepo.ListLikers(r.Context(), userID, token, pageSize)
	if err != nil {
		s.appCtx.Logger.Error("ListLikers failed", "err", err)
		server.WriteError(w, err)
		return
	}

	resp := likedByResponse{Likers: []likerEntry{}}
	for _, l := range likes {
		resp.Likers = append(resp.Likers, likerEntry{UserID: l.UserID})
	}
	resp.NextPaginationToken = nextToken

	s.appCtx.Logger.Debug("ListLikedBy result", "user", userID, "liker_count", len(resp.Likers))

	server.WriteJSON(w, http.StatusOK, resp)
}

// handleCountLikedBy returns how many distinct users liked this user.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On cache miss, falls back to the DB count.
//  3. On DB fetch, updates Redis with a TTL.
func (s *Service) handleCountLikedBy(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	ctx := r.Context()
	key := s.appCtx.RedisCache.KeyForLikeCount(userID)

	if n, ok, _ := s.appCtx.RedisCache.GetCount(ctx, key); ok {
		server.WriteJSON(w, http.StatusOK, countResponse{Count: uint64(n)})
		return
	}

	count, err := s.likeRepo.CountLikers(ctx, userID)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	_ = s.appCtx.RedisCache.SetCount(ctx, key, count)

	server.WriteJSON(w, http.StatusOK, countResponse{Count: uint64(count)})
}

// handleCountMatches returns how many matches the user holds, with the
// same cache-first strategy as handleCountLikedBy. PutLike invalidates
// both sides' keys when a new pairing lands.
func (s *Service) handleCountMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	ctx := r.Context()
	key := s.appCtx.RedisCache.KeyForMatchCount(userID)

	if n, ok, _ := s.appCtx.RedisCache.GetCount(ctx, key); ok {
		server.WriteJSON(w, http.StatusOK, countResponse{Count: uint64(n)})
		return
	}

	count, err := s.likeRepo.CountMatches(ctx, userID)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	_ = s.appCtx.RedisCache.SetCount(ctx, key, count)

	server.WriteJSON(w, http.StatusOK, countResponse{Count: uint64(count)})
}

// handleListMatches returns the user's matches, newest first, with
// cursor pagination.
func (s *Service) handleListMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	token := paginationToken(r)
	matches, nextToken, err := s.likeRepo.ListMatches(r.Context(), userID, token, pageSize)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	resp := matchesResponse{Matches: []matchEntry{}}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, matchEntry{UserID: m.LikedUserID})
	}
	resp.NextPaginationToken = nextToken

	server.WriteJSON(w, http.StatusOK, resp)
}

// parseUserID reads the {userID} route param.
func parseUserID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument("user id must be a valid uint64")
	}
	return id, nil
}

// paginationToken reads the optional page_token query param.
func paginationToken(r *http.Request) *string {
	if t := r.URL.Query().Get("page_token"); t != "" {
		return &t
	}
	return nil
}
