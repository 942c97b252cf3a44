// Package testutil wires the app on the in-memory database for tests & sets up the optional test Postgres.
package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"os"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/authz"
	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/dashboard"
	"github.com/sarvashiksha/backend/core/notification"
	"github.com/sarvashiksha/backend/core/submission"
	"github.com/sarvashiksha/backend/core/user"
	appfs "github.com/sarvashiksha/backend/fs"
	emailsvc "github.com/sarvashiksha/backend/services/email"
	logsvc "github.com/sarvashiksha/backend/services/logger"
	"github.com/sarvashiksha/backend/storage/database"
	inmemdb "github.com/sarvashiksha/backend/storage/database/inmem"
)

// NewConfig returns a Config fit for tests, independent of the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		AppName:                   "SarvaShiksha",
		SecretKey:                 "test-secret-key",
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Name: "SarvaShiksha", Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			Host:                      "localhost",
			Address:                   ":0",
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Database: core.DatabaseConfig{
			Engine:        "memory",
			Host:          envOr("TEST_DATABASE_HOST", "localhost"),
			Port:          5432,
			Name:          os.Getenv("TEST_DATABASE_NAME"),
			User:          envOr("TEST_DATABASE_USER", "postgres"),
			Password:      envOr("TEST_DATABASE_PASSWORD", "postgres"),
			AdminUser:     envOr("TEST_DATABASE_USER", "postgres"),
			AdminPassword: envOr("TEST_DATABASE_PASSWORD", "postgres"),
			DisableTLS:    true,
			MaxOpenConns:  5,
			MaxIdleConns:  2,
		},
		Classes: core.ClassesConfig{
			EnrollmentCodeLength:   8,
			EnrollmentCodeAttempts: 5,
		},
	}
}

func envOr(key, dflt string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return dflt
}

// NewLogger returns a silent logger.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// NewValidator returns a validator with every app rule registered.
func NewValidator(logger core.Logger) (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator, user.LoadCommonPasswords(appfs.FS, logger))
	content.InitValidators(validate, translator)
	return validate, translator
}

// App bundles the services wired on a fresh in-memory database.
type App struct {
	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	Mailer      *emailsvc.ConsoleServiceMock
	DB          *inmemdb.DB
	UserRepo    user.Repository
	ClassRepo   class.Repository
	ContentRepo content.Repository

	UserSvc         *user.Service
	ClassSvc        *class.Service
	ContentSvc      *content.Service
	SubmissionSvc   *submission.Service
	NotificationSvc *notification.Service
	DashboardSvc    *dashboard.Service
}

func NewApp(t *testing.T) *App {
	t.Helper()

	conf := NewConfig()
	logger := NewLogger(conf)
	validate, translator := NewValidator(logger)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	mailer := emailsvc.NewConsoleServiceMock(conf, core.ParseEmailTemplates(appfs.FS, true, logger))

	usrRepo := inmemdb.NewUserRepository(db)
	classRepo := inmemdb.NewClassRepository(db)
	contentRepo := inmemdb.NewContentRepository(db)
	az := authz.NewAuthorizer(inmemdb.NewRegistry(db))
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db))

	return &App{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		Mailer:          mailer,
		DB:              db,
		UserRepo:        usrRepo,
		ClassRepo:       classRepo,
		ContentRepo:     contentRepo,
		UserSvc:         user.NewService(usrRepo, mailer, conf),
		ClassSvc:        class.NewService(classRepo, az, notifSvc, logger, conf),
		ContentSvc:      content.NewService(contentRepo, classRepo, az, notifSvc, logger),
		SubmissionSvc:   submission.NewService(inmemdb.NewSubmissionRepository(db), contentRepo, classRepo, az, notifSvc, validate, logger),
		NotificationSvc: notifSvc,
		DashboardSvc:    dashboard.NewService(inmemdb.NewDashboardRepository(db)),
	}
}

// CreateUser stores a user directly in repo, skipping validation.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, role, pwd string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// PrepareDB connects to the migrated, emptied test database.
// Tests are skipped unless TEST_DATABASE_NAME is set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := NewConfig()
	if conf.Database.Name == "" {
		t.Skip("TEST_DATABASE_NAME not set")
	}
	conf.Database.Engine = "postgres"

	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("CreateIfNotExist() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if _, err = db.Exec(`TRUNCATE notification, submission, material, assignment, class_student, class, "user" CASCADE`); err != nil {
		t.Fatalf("truncating tables failed: %v", err)
	}
	return db
}
