package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/courseflow/backend/apps/api/echo"
	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/ingest"
	"github.com/courseflow/backend/services/gemini"
	logsvc "github.com/courseflow/backend/services/logger"
	"github.com/courseflow/backend/services/mirror"
	"github.com/courseflow/backend/services/pdftext"
	"github.com/courseflow/backend/storage"
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
	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	store, closeStore, err := storage.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeStore(); err != nil {
			storeLogger.Fatal("Failed to close", err)
		}
	}()

	ctx := context.Background()
	ledger := course.Open(ctx, store, storeLogger)

	var courseMirror course.Mirror = course.NopMirror{}
	if conf.Mirror.URL != "" {
		courseMirror = mirror.NewClient(conf.Mirror)
	}

	if conf.ClearDataOnStart {
		clearData(ctx, conf, ledger, courseMirror, logger)
	}

	// set up services
	if conf.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, syllabus analysis will fail")
	}
	intake := ingest.NewService(pdftext.Extractor{}, gemini.NewClient(conf.Gemini), ledger, courseMirror, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	if conf.Server.DebugAddress != "" {
		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.NewString("storage").Set(conf.Storage.Engine)
		expvar.Publish("courses", expvar.Func(func() interface{} { return len(ledger.Courses()) }))

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Ledger:     ledger,
			Intake:     intake,
			Mirror:     courseMirror,
			Validate:   validate,
			Translator: translator,
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

// clearData empties the ledger, the mirror and the uploads dir. Development only.
func clearData(ctx context.Context, conf *core.Config, ledger *course.Ledger, m course.Mirror, logger core.Logger) {
	logger.Info("Clearing data on start")
	ledger.ClearAll(ctx)
	if err := m.Reset(ctx); err != nil {
		logger.Error("could not reset mirror", err)
	}
	if err := clearDir(conf.Uploads.Dir); err != nil {
		logger.Error("could not clear uploads", err)
	}
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading dir")
	}
	for _, e := range entries {
		if err = os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrapf(err, "removing %s", e.Name())
		}
	}
	return nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
