package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/sarvashiksha/backend/apps/api/echo"
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
	boiledrepos "github.com/sarvashiksha/backend/storage/database/sqlboiler"
	sqlxrepos "github.com/sarvashiksha/backend/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage is the set of repositories backing the services, for the configured engine.
	Storage struct {
		dig.Out
		Users         user.Repository
		Classes       class.Repository
		Content       content.Repository
		Submissions   submission.Repository
		Notifications notification.Repository
		Dashboard     dashboard.Repository
		Registry      authz.Registry
		Closer        DBCloser
	}

	// DBCloser releases the database connections.
	DBCloser func() error

	depsParams struct {
		dig.In
		UserSvc         *user.Service
		ClassSvc        *class.Service
		ContentSvc      *content.Service
		SubmissionSvc   *submission.Service
		NotificationSvc *notification.Service
		DashboardSvc    *dashboard.Service
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.Engine == "memory" {
		loggerParam.Logger.Warn("using the in-memory database: data is lost on shutdown")
		db, _ := inmemdb.Open()
		return Storage{
			Users:         inmemdb.NewUserRepository(db),
			Classes:       inmemdb.NewClassRepository(db),
			Content:       inmemdb.NewContentRepository(db),
			Submissions:   inmemdb.NewSubmissionRepository(db),
			Notifications: inmemdb.NewNotificationRepository(db),
			Dashboard:     inmemdb.NewDashboardRepository(db),
			Registry:      inmemdb.NewRegistry(db),
			Closer:        func() error { return nil },
		}
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	if err = database.Migrate(db.DB); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	return Storage{
		Users:         sqlxrepos.NewUserRepository(db),
		Classes:       sqlxrepos.NewClassRepository(db),
		Content:       sqlxrepos.NewContentRepository(db),
		Submissions:   sqlxrepos.NewSubmissionRepository(db),
		Notifications: sqlxrepos.NewNotificationRepository(db),
		Dashboard:     boiledrepos.NewDashboardRepository(db),
		Registry:      sqlxrepos.NewRegistry(db),
		Closer:        db.Close,
	}
}

func newEmailTemplates(conf *core.Config, logger core.Logger) *core.EmailTemplates {
	return core.ParseEmailTemplates(appfs.FS, conf.Debug || conf.TestMode, logger)
}

func newEmailService(conf *core.Config, tmpls *core.EmailTemplates, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, tmpls, log.New(os.Stdout, "EMAIL : ", log.LstdFlags))
	}
	return emailsvc.NewSendgridService(conf, tmpls, logger)
}

// newValidator registers every custom rule & translation on a fresh validator.
func newValidator(translator ut.Translator, logger core.Logger) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator, user.LoadCommonPasswords(appfs.FS, logger))
	content.InitValidators(validate, translator)
	return validate
}

func newClassService(
	repo class.Repository,
	az *authz.Authorizer,
	notifier *notification.Service,
	logger core.Logger,
	conf *core.Config,
) *class.Service {
	return class.NewService(repo, az, notifier, logger, conf)
}

func newContentService(
	repo content.Repository,
	classes class.Repository,
	az *authz.Authorizer,
	notifier *notification.Service,
	logger core.Logger,
) *content.Service {
	return content.NewService(repo, classes, az, notifier, logger)
}

func newSubmissionService(
	repo submission.Repository,
	assignments content.Repository,
	classes class.Repository,
	az *authz.Authorizer,
	notifier *notification.Service,
	validate *validator.Validate,
	logger core.Logger,
) *submission.Service {
	return submission.NewService(repo, assignments, classes, az, notifier, validate, logger)
}

func newDeps(p depsParams) *echoapi.Deps {
	return &echoapi.Deps{
		UserSvc:         p.UserSvc,
		ClassSvc:        p.ClassSvc,
		ContentSvc:      p.ContentSvc,
		SubmissionSvc:   p.SubmissionSvc,
		NotificationSvc: p.NotificationSvc,
		DashboardSvc:    p.DashboardSvc,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailTemplates))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(authz.NewAuthorizer))
	must(c.Provide(user.NewService))
	must(c.Provide(notification.NewService))
	must(c.Provide(newClassService))
	must(c.Provide(newContentService))
	must(c.Provide(newSubmissionService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
