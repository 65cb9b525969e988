package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/notify"
	"github.com/google/uuid"
	"github.com/thanhpk/randstr"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

type UserService struct {
	db     *gorm.DB
	cfg    *config.Config
	audit  *AuditService
	mailer notify.Mailer
}

func NewUserService(db *gorm.DB, cfg *config.Config, audit *AuditService, mailer notify.Mailer) *UserService {
	if mailer == nil {
		mailer = notify.Noop{}
	}
	return &UserService{db: db, cfg: cfg, audit: audit, mailer: mailer}
}

// LoadActor resolves the authenticated user for request authorization.
func (s *UserService) LoadActor(ctx context.Context, id uuid.UUID) (access.Actor, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return access.Actor{}, notFound(err, ErrUserNotFound)
	}
	return access.ActorFromUser(&user), nil
}

// Create adds a non-admin account with a generated temporary password. The
// password is returned once and emailed when SMTP is configured.
func (s *UserService) Create(ctx context.Context, actor access.Actor, req *dto.CreateUserRequest) (*models.User, string, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, "", err
	}
	user, err := newUser(req)
	if err != nil {
		return nil, "", err
	}
	password := temporaryPassword()
	if user.Password, err = hashPassword(password); err != nil {
		return nil, "", err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, user.Username, user.Email); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}
		return s.audit.Record(ctx, tx, models.EventUserCreated, actor.ID, user.Username, map[string]any{
			"user_id": user.ID.String(),
			"role":    string(user.Role),
		})
	})
	if err != nil {
		return nil, "", err
	}

	s.sendCredentials(user, password, "created")
	return user, password, nil
}

func newUser(req *dto.CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 || len(username) > 64 {
		return nil, invalidField("username", "must be between 3 and 64 characters")
	}
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || len(email) > 120 {
		return nil, invalidField("email", "must be a valid email address")
	}
	role := models.Role(req.Role)
	if !role.Valid() || role == models.RoleAdmin {
		return nil, invalidField("role", "must be teamLead, dataAnalyst or cashController")
	}
	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	switch gender {
	case "", "male", "female", "other":
	default:
		return nil, invalidField("gender", "must be male, female or other")
	}
	telephone := strings.TrimSpace(req.Telephone)
	if len(telephone) > 20 {
		return nil, invalidField("telephone", "must be at most 20 characters")
	}
	return &models.User{
		Username:   username,
		Email:      email,
		Role:       role,
		Gender:     gender,
		Telephone:  telephone,
		Active:     true,
		FirstLogin: true,
	}, nil
}

func checkUnique(tx *gorm.DB, username, email string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}

// List returns all accounts, optionally filtered by a username substring.
func (s *UserService) List(ctx context.Context, actor access.Actor, search string) ([]models.User, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()

	q := s.db.WithContext(ctx).Order("username ASC")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(username) LIKE ? ESCAPE '!'", containsPattern(search))
	}
	users := []models.User{}
	err := q.Find(&users).Error
	return users, err
}

// SetActive activates or deactivates an account. The bootstrap admin cannot be deactivated.
func (s *UserService) SetActive(ctx context.Context, actor access.Actor, id uuid.UUID, active bool) (*models.User, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if user.Bootstrap && !active {
			return ErrBootstrapProtected
		}
		if err := tx.Model(&user).Update("active", active).Error; err != nil {
			return err
		}
		if !active {
			if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error; err != nil {
				return err
			}
		}
		event := models.EventUserActivated
		if !active {
			event = models.EventUserDeactivated
		}
		return s.audit.Record(ctx, tx, event, actor.ID, user.Username, nil)
	})
	if err != nil {
		return nil, err
	}
	user.Active = active
	return &user, nil
}

// Delete removes an account with its comments, tokens and activation history.
// Users referenced by reports cannot be deleted; deactivate them instead.
func (s *UserService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if user.Bootstrap {
			return ErrBootstrapProtected
		}
		var count int64
		if err := tx.Model(&models.Report{}).
			Where("submitted_by_id = ? OR verified_by_id = ?", id, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasReports
		}

		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_lead_id = ? OR activated_by_id = ?", id, id).Delete(&models.TeamLeadActivation{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, models.EventUserDeleted, actor.ID, user.Username, map[string]any{
			"user_id": user.ID.String(),
		})
	})
}

// ResetPassword sets a new password and forces a change on next login. An empty
// NewPassword generates one; a provided one must satisfy the password policy.
func (s *UserService) ResetPassword(ctx context.Context, actor access.Actor, id uuid.UUID, req *dto.ResetPasswordRequest) (string, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return "", err
	}
	password := req.NewPassword
	if password == "" {
		password = temporaryPassword()
	} else if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if err := tx.Model(&user).Updates(map[string]any{"password": hash, "first_login": true}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, models.EventPasswordReset, actor.ID, user.Username, nil)
	})
	if err != nil {
		return "", err
	}

	s.sendCredentials(&user, password, "reset")
	return password, nil
}

// EnsureBootstrapAdmin creates the built-in admin on first start. It returns the
// generated password when one had to be made up, so the caller can log it once.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context) (created bool, generated string, err error) {
	ctx, cancel := withTimeout(ctx, s.cfg.DBQueryTimeout)
	defer cancel()
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("bootstrap = ?", true).Count(&count).Error; err != nil {
		return false, "", err
	}
	if count > 0 {
		return false, "", nil
	}

	password := s.cfg.BootstrapAdminPassword
	firstLogin := false
	if password == "" {
		password = temporaryPassword()
		generated = password
		firstLogin = true
	}
	hash, err := hashPassword(password)
	if err != nil {
		return false, "", err
	}

	admin := models.User{
		Username:   s.cfg.BootstrapAdminUsername,
		Email:      s.cfg.BootstrapAdminEmail,
		Password:   hash,
		Role:       models.RoleAdmin,
		Active:     true,
		FirstLogin: firstLogin,
		Bootstrap:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, "", err
	}
	slog.Info("bootstrap admin created", "username", admin.Username)
	return true, generated, nil
}

func (s *UserService) sendCredentials(user *models.User, password, reason string) {
	if err := s.mailer.SendCredentials(user.Email, user.Username, password, reason); err != nil {
		slog.Error("failed to email credentials", "username", user.Username, "error", err)
	}
}

// temporaryPassword satisfies the password policy: randstr supplies the bulk and
// a fixed suffix guarantees each required character class.
func temporaryPassword() string {
	return randstr.String(temporaryPasswordLength) + "aA1!"
}
