// Package gormrepo implements the user repository on top of GORM. Every
// operation runs exactly one parameterized statement in autocommit mode,
// except Update which needs a second query to tell "unchanged" from "missing".
package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/internal/domain/user"
)

const tracerName = "users-api/internal/adapter/db/gormrepo"

// DBProvider hands out the shared pool handle.
type DBProvider interface {
	DB() (*gorm.DB, error)
}

// UserRepo implements the usecase Repository interface using GORM.
type UserRepo struct {
	pool   DBProvider
	log    *zap.Logger
	tracer trace.Tracer
}

// Option configures a UserRepo.
type Option func(*UserRepo)

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *UserRepo) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(pool DBProvider, log *zap.Logger, opts ...Option) *UserRepo {
	r := &UserRepo{
		pool:   pool,
		log:    log,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null;unique"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates the users table when it does not exist.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func (r *UserRepo) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "UserRepo."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("db.sql.table", "users"))...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create inserts a new user and returns the id assigned by storage.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (id int64, err error) {
	ctx, span := r.start(ctx, "Create")
	defer func() { finish(span, err) }()

	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	db, err := r.pool.DB()
	if err != nil {
		return 0, err
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
	}

	if err := db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email on create", zap.String("email", u.Email))
			return 0, fmt.Errorf("failed to create user: %w", errors.Join(user.ErrEmailTaken, err))
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// List returns every user, newest (highest id) first.
func (r *UserRepo) List(ctx context.Context) (users []user.User, err error) {
	ctx, span := r.start(ctx, "List")
	defer func() { finish(span, err) }()

	db, err := r.pool.DB()
	if err != nil {
		return nil, err
	}

	var models []UserSchema
	if err := db.WithContext(ctx).Order("id DESC").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users = make([]user.User, len(models))
	for i, model := range models {
		users[i] = toDomain(model)
	}

	span.SetAttributes(attribute.Int("db.rows", len(users)))
	return users, nil
}

// GetByID retrieves a user by id. A missing row yields user.ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (u *user.User, err error) {
	ctx, span := r.start(ctx, "GetByID", attribute.Int64("user.id", id))
	defer func() { finish(span, err) }()

	db, err := r.pool.DB()
	if err != nil {
		return nil, err
	}

	var model UserSchema
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	found := toDomain(model)
	return &found, nil
}

// Update overwrites name and email of the user with u.ID.
//
// Postgres and SQLite report matched rows only, so the update is guarded by a
// "values differ" predicate: its row count is the changed count. When nothing
// changed, an existence check supplies the matched count. A concurrent delete
// between the two statements is reported as not matched.
func (r *UserRepo) Update(ctx context.Context, u *user.User) (res user.UpdateResult, err error) {
	ctx, span := r.start(ctx, "Update")
	defer func() { finish(span, err) }()

	if u == nil {
		return res, errors.New("user cannot be nil")
	}
	span.SetAttributes(attribute.Int64("user.id", u.ID))

	db, err := r.pool.DB()
	if err != nil {
		return res, err
	}
	db = db.WithContext(ctx)

	result := db.Model(&UserSchema{}).
		Where("id = ? AND (name <> ? OR email <> ?)", u.ID, u.Name, u.Email).
		Updates(map[string]any{"name": u.Name, "email": u.Email})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			r.log.Warn("duplicate email on update", zap.Int64("id", u.ID), zap.String("email", u.Email))
			return res, fmt.Errorf("failed to update user: %w", errors.Join(user.ErrEmailTaken, result.Error))
		}
		r.log.Error("failed to update user in db", zap.Error(result.Error), zap.Int64("id", u.ID))
		return res, fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		res = user.UpdateResult{Matched: result.RowsAffected, Changed: result.RowsAffected}
		r.log.Info("user updated in db", zap.Int64("id", u.ID))
		return res, nil
	}

	var matched int64
	if err := db.Model(&UserSchema{}).Where("id = ?", u.ID).Count(&matched).Error; err != nil {
		r.log.Error("failed to count user after no-op update", zap.Error(err), zap.Int64("id", u.ID))
		return res, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Debug("user update changed no rows", zap.Int64("id", u.ID), zap.Int64("matched", matched))
	return user.UpdateResult{Matched: matched}, nil
}

// Delete removes a user by id and returns the number of rows removed.
func (r *UserRepo) Delete(ctx context.Context, id int64) (affected int64, err error) {
	ctx, span := r.start(ctx, "Delete", attribute.Int64("user.id", id))
	defer func() { finish(span, err) }()

	db, err := r.pool.DB()
	if err != nil {
		return 0, err
	}

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if result.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", result.Error)
	}

	r.log.Info("user delete executed", zap.Int64("id", id), zap.Int64("rows", result.RowsAffected))
	return result.RowsAffected, nil
}

func toDomain(m UserSchema) user.User {
	return user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}
