package account

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/udinder/udinder/internal/app"
	"github.com/udinder/udinder/internal/db"
	svcErr "github.com/udinder/udinder/internal/errors"
	"github.com/udinder/udinder/internal/repository"
	"github.com/udinder/udinder/internal/server"
)

// Service implements the Account HTTP API: user registration, profile
// management and admin records.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewAccountService creates a new Account service with dependencies from AppContext.
func NewAccountService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

type createUserRequest struct {
	ID          uint64  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Password    string  `json:"password"`
	Gender      *string `json:"gender,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty"`
	Preferences *string `json:"preferences,omitempty"`
	Location    *string `json:"location,omitempty"`
	Age         *int    `json:"age,omitempty"`
}

type profileResponse struct {
	Photo       []byte  `json:"photo,omitempty"`
	Description *string `json:"description,omitempty"`
	Interests   *string `json:"interests,omitempty"`
}

type adminResponse struct {
	IsBlocked bool `json:"is_blocked"`
}

type userResponse struct {
	ID          uint64           `json:"id"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Gender      *string          `json:"gender,omitempty"`
	BirthDate   *time.Time       `json:"birth_date,omitempty"`
	Preferences *string          `json:"preferences,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Age         *int             `json:"age,omitempty"`
	Profile     *profileResponse `json:"profile,omitempty"`
	Admin       *adminResponse   `json:"admin,omitempty"`
}

type upsertProfileRequest struct {
	Photo       []byte  `json:"photo,omitempty"`
	Description *string `json:"description,omitempty"`
	Interests   *string `json:"interests,omitempty"`
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

// handleCreateUser registers a user.
//
// Behavior:
//   - The id comes from the caller and is stored as-is; the database
//     never assigns one. A reused id fails with already_exists.
//   - The password is bcrypt-hashed before storage.
func (s *Service) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid JSON body"))
		return
	}

	s.appCtx.Logger.Debug("CreateUser called", "id", req.ID, "email", req.Email)

	if req.ID == 0 {
		server.WriteError(w, svcErr.InvalidArgument("id is required and must be positive"))
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		server.WriteError(w, svcErr.InvalidArgument("email, name and password are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	user := db.User{
		ID:          req.ID,
		Email:       req.Email,
		Name:        req.Name,
		Password:    string(hash),
		Gender:      req.Gender,
		Preferences: req.Preferences,
		Location:    req.Location,
		Age:         req.Age,
	}

	if req.BirthDate != nil {
		bd, err := time.Parse(time.RFC3339, *req.BirthDate)
		if err != nil {
			server.WriteError(w, svcErr.InvalidArgument("birth_date must be RFC3339"))
			return
		}
		user.BirthDate = &bd
	}

	if err := s.userRepo.CreateUser(r.Context(), &user); err != nil {
		s.appCtx.Logger.Error("CreateUser failed", "id", req.ID, "err", err)
		server.WriteError(w, err)
		return
	}

	server.WriteJSON(w, http.StatusCreated, toUserResponse(&user))
}

// handleGetUser returns a user with profile and admin data attached.
func (s *Service) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	user, err := s.userRepo.GetUser(r.Context(), userID)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// handleUpsertProfile creates or replaces the user's extended profile.
// The photo travels as base64 in JSON and is stored as a blob.
func (s *Service) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	var req upsertProfileRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid JSON body"))
		return
	}

	profile := db.Profile{
		UserID:      userID,
		Photo:       req.Photo,
		Description: req.Description,
		Interests:   req.Interests,
	}

	if err := s.userRepo.UpsertProfile(r.Context(), &profile); err != nil {
		s.appCtx.Logger.Error("UpsertProfile failed", "user_id", userID, "err", err)
		server.WriteError(w, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, profileResponse{
		Photo:       profile.Photo,
		Description: profile.Description,
		Interests:   profile.Interests,
	})
}

// handleGrantAdmin attaches an admin record to the user. Idempotent:
// granting twice returns the existing record.
func (s *Service) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	admin, err := s.userRepo.GrantAdmin(r.Context(), userID)
	if err != nil {
		s.appCtx.Logger.Error("GrantAdmin failed", "user_id", userID, "err", err)
		server.WriteError(w, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, adminResponse{IsBlocked: admin.IsBlocked})
}

// handleSetBlocked flips the block flag on a user's admin record.
func (s *Service) handleSetBlocked(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	var req setBlockedRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid JSON body"))
		return
	}

	if err := s.userRepo.SetAdminBlocked(r.Context(), userID, req.Blocked); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.WriteError(w, svcErr.NotFound("user has no admin record"))
			return
		}
		server.WriteError(w, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, adminResponse{IsBlocked: req.Blocked})
}

func toUserResponse(user *db.User) userResponse {
	resp := userResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Gender:      user.Gender,
		BirthDate:   user.BirthDate,
		Preferences: user.Preferences,
		Location:    user.Location,
		Age:         user.Age,
	}
	if user.Profile != nil {
		resp.Profile = &profileResponse{
			Photo:       user.Profile.Photo,
			Description: user.Profile.Description,
			Interests:   user.Profile.Interests,
		}
	}
	if user.Admin != nil {
		resp.Admin = &adminResponse{IsBlocked: user.Admin.IsBlocked}
	}
	return resp
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
