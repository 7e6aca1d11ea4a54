package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/vipinkoroth/sarvodaya/apps/api/echo"
	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/report"
	"github.com/vipinkoroth/sarvodaya/core/student"
	"github.com/vipinkoroth/sarvodaya/core/user"
	emailsvc "github.com/vipinkoroth/sarvodaya/services/email"
	logsvc "github.com/vipinkoroth/sarvodaya/services/logger"
	smssvc "github.com/vipinkoroth/sarvodaya/services/sms"
	"github.com/vipinkoroth/sarvodaya/storage/database"
	inmemdb "github.com/vipinkoroth/sarvodaya/storage/database/inmem"
	sqlxrepos "github.com/vipinkoroth/sarvodaya/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up repositories
	repos, dbClose, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = dbClose(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	var smsSvc core.SMSService
	if conf.Debug {
		smsSvc = smssvc.NewConsoleService()
	} else {
		smsSvc = smssvc.NewGatewayService(conf, logger)
	}

	usrSvc := user.NewService(repos.user, mailSvc, conf)
	studentSvc := student.NewService(repos.student)
	paymentSvc := payment.NewService(repos.payment, studentSvc, smsSvc, conf)
	feesSvc := fees.NewService(repos.fees)
	reportSvc := report.NewService(studentSvc, paymentSvc, feesSvc)
	collectionSvc := collection.NewService(repos.collection, paymentSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	collection.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			UserSvc:       usrSvc,
			StudentSvc:    studentSvc,
			PaymentSvc:    paymentSvc,
			FeesSvc:       feesSvc,
			ReportSvc:     reportSvc,
			CollectionSvc: collectionSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type repositories struct {
	user       user.Repository
	student    student.Repository
	payment    payment.Repository
	fees       fees.Repository
	collection collection.Repository
}

// setUpRepositories opens the configured store and builds the repository set.
// Engine "inmem" keeps everything in process memory, handy for demos and
// local hacking; anything else goes through Postgres with migrations applied.
func setUpRepositories(conf *core.Config) (repositories, func() error, error) {
	if conf.Database.Engine == "inmem" {
		db, err := inmemdb.Open()
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			user:       inmemdb.NewUserRepository(db),
			student:    inmemdb.NewStudentRepository(db),
			payment:    inmemdb.NewPaymentRepository(db),
			fees:       inmemdb.NewFeesRepository(db),
			collection: inmemdb.NewCollectionRepository(db),
		}, func() error { return nil }, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return repositories{}, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return repositories{}, nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		user:       sqlxrepos.NewUserRepository(db),
		student:    sqlxrepos.NewStudentRepository(db),
		payment:    sqlxrepos.NewPaymentRepository(db),
		fees:       sqlxrepos.NewFeesRepository(db),
		collection: sqlxrepos.NewCollectionRepository(db),
	}, db.Close, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
