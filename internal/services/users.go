package services

import (
	"context"
	"strings"

	"github.com/localnerve/tevor-api/internal/cache"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// SystemActor is recorded as creator of rows written without a user
const SystemActor = "SYSTEM"

// UserInput carries the writable user fields
type UserInput struct {
	Name      string       `json:"name"`
	ShortName string       `json:"shortname"`
	Roles     models.Roles `json:"roles"`
	Cert      string       `json:"cert,omitempty"`
}

// UserDirectory owns user records. Lookups by certificate run on every
// authenticated request so both lookup keys are cached.
type UserDirectory struct {
	db     *gorm.DB
	ids    *IDAllocator
	byID   *cache.Cache[string, models.User]
	byCert *cache.Cache[string, models.User]
	log    zerolog.Logger
}

// NewUserDirectory creates a directory allocating user ids from ids
func NewUserDirectory(db *gorm.DB, ids *IDAllocator, cacheSize int, log zerolog.Logger) *UserDirectory {
	return &UserDirectory{
		db:     db,
		ids:    ids,
		byID:   cache.New[string, models.User](cacheSize),
		byCert: cache.New[string, models.User](cacheSize),
		log:    log.With().Str("component", "user").Logger(),
	}
}

// generations pairs the cache generations taken before a read
type generations struct {
	byID, byCert cache.Generation
}

func (d *UserDirectory) generations() generations {
	return generations{byID: d.byID.Generation(), byCert: d.byCert.Generation()}
}

// remember caches u unless it was updated or deleted since gen was taken
func (d *UserDirectory) remember(gen generations, u models.User) {
	d.byID.SetSince(gen.byID, u.UserID, u)
	d.byCert.SetSince(gen.byCert, u.Cert, u)
}

func (d *UserDirectory) forget(userID string) {
	d.byID.Delete(userID)
	d.byCert.DeleteFunc(func(u models.User) bool {
		return u.UserID == userID
	})
}

func (d *UserDirectory) find(ctx context.Context, column, value string) (*models.User, error) {
	gen := d.generations()

	var user models.User
	err := quiet(d.db).WithContext(ctx).
		Clauses(hints.Comment("select", "user_find")).
		Where(column+" = ? AND deleted = ?", value, false).
		First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, types.NotFound("User not found")
		}
		return nil, err
	}

	d.remember(gen, user)
	return &user, nil
}

// FindByCert returns the non-deleted user presenting certificate cn
func (d *UserDirectory) FindByCert(ctx context.Context, cert string) (*models.User, error) {
	if u, ok := d.byCert.Get(cert); ok {
		return &u, nil
	}
	return d.find(ctx, "cert", cert)
}

// FindByID returns the non-deleted user with userid
func (d *UserDirectory) FindByID(ctx context.Context, userID string) (*models.User, error) {
	userID = strings.ToUpper(strings.TrimSpace(userID))
	if u, ok := d.byID.Get(userID); ok {
		return &u, nil
	}
	return d.find(ctx, "userid", userID)
}

func validateUserInput(in UserInput, requireCert bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return types.Validation("name is required")
	}
	if strings.TrimSpace(in.ShortName) == "" {
		return types.Validation("shortname is required")
	}
	if requireCert && strings.TrimSpace(in.Cert) == "" {
		return types.Validation("cert is required")
	}
	if !in.Roles.Valid() {
		return types.Validation("roles must be one of USER or ADMIN")
	}
	return nil
}

// CreateUser registers a user under a freshly allocated USR id
func (d *UserDirectory) CreateUser(ctx context.Context, actorID string, in UserInput) (*models.User, error) {
	if err := validateUserInput(in, true); err != nil {
		return nil, err
	}

	userID, err := d.ids.Next(ctx, SeqUser, PrefixUser, UserIDWidth)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		ShortName:  strings.TrimSpace(in.ShortName),
		Roles:      in.Roles,
		Cert:       strings.TrimSpace(in.Cert),
		CreatedBy:  actorID,
		ModifiedBy: actorID,
	}
	if err := d.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, types.Constraint("A user with this certificate already exists")
		}
		return nil, err
	}

	d.log.Info().Str("userid", userID).Str("actor", actorID).Msg("user created")
	return &user, nil
}

// UpdateUser replaces the name, shortname and roles of a user, and the
// certificate when one is given.
func (d *UserDirectory) UpdateUser(ctx context.Context, actorID, userID string, in UserInput) (*models.User, error) {
	if err := validateUserInput(in, false); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"shortname":   strings.TrimSpace(in.ShortName),
		"role_job":    in.Roles.Job,
		"role_stock":  in.Roles.Stock,
		"role_user":   in.Roles.User,
		"modified_by": actorID,
	}
	if cert := strings.TrimSpace(in.Cert); cert != "" {
		updates["cert"] = cert
	}

	return d.update(ctx, userID, updates)
}

// UpdateProfile lets a user change their own shortname
func (d *UserDirectory) UpdateProfile(ctx context.Context, userID, shortName string) (*models.User, error) {
	shortName = strings.TrimSpace(shortName)
	if shortName == "" {
		return nil, types.Validation("shortname is required")
	}
	return d.update(ctx, userID, map[string]any{
		"shortname":   shortName,
		"modified_by": userID,
	})
}

func (d *UserDirectory) update(ctx context.Context, userID string, updates map[string]any) (*models.User, error) {
	result := d.db.WithContext(ctx).Model(&models.User{}).
		Where("userid = ? AND deleted = ?", userID, false).
		Updates(updates)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return nil, types.Constraint("A user with this certificate already exists")
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, types.NotFound("User not found")
	}

	d.forget(userID)
	return d.FindByID(ctx, userID)
}

// DeleteUser soft deletes a user. Users cannot delete themselves.
func (d *UserDirectory) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return types.Validation("Cannot delete the current user")
	}

	result := d.db.WithContext(ctx).Model(&models.User{}).
		Where("userid = ? AND deleted = ?", userID, false).
		Updates(map[string]any{
			"deleted":     true,
			"modified_by": actorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("User not found")
	}

	d.forget(userID)
	d.log.Info().Str("userid", userID).Str("actor", actorID).Msg("user deleted")
	return nil
}

// ListUsers returns every non-deleted user ordered by userid
func (d *UserDirectory) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := d.db.WithContext(ctx).
		Clauses(hints.Comment("select", "user_list")).
		Where("deleted = ?", false).
		Order("userid").
		Find(&users).Error
	return users, err
}

// EnsureAdmin creates an administrator for cert unless a user already holds
// it, so a fresh database can be administered. An empty cert does nothing.
func (d *UserDirectory) EnsureAdmin(ctx context.Context, cert string) (*models.User, error) {
	cert = strings.TrimSpace(cert)
	if cert == "" {
		return nil, nil
	}

	var count int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("cert = ?", cert).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	return d.CreateUser(ctx, SystemActor, UserInput{
		Name:      "Administrator",
		ShortName: "admin",
		Cert:      cert,
		Roles: models.Roles{
			Job:   models.RoleAdmin,
			Stock: models.RoleAdmin,
			User:  models.RoleAdmin,
		},
	})
}
