package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"sync"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/api"
	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/estateshq/estates-backend/estates-notification/util"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCommand serves the estates notification api
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serves the estates notification api",
		RunE:  run,
	}
}

// SetLogs writes json logs to a dated file and the terminal
func SetLogs() {
	now := time.Now()
	logFileName := now.Format("2006-01-02") + ".log"
	logFilePath := path.Join("./storage/logs", logFileName)

	if err := os.MkdirAll("./storage/logs", 0755); err != nil {
		logrus.Error("error creating log directory:", err)
		return
	}

	file, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		logrus.Error("error opening log file:", err)
		return
	}

	mw := io.MultiWriter(os.Stdout, file)
	logrus.SetOutput(mw)

	logrus.SetFormatter(&logrus.JSONFormatter{
		DisableHTMLEscape: true,
		TimestampFormat:   "2006-01-02 15:04:05",
	})
	logrus.SetReportCaller(true)
	logrus.SetLevel(logrus.DebugLevel)
}

func run(cmd *cobra.Command, args []string) error {

	SetLogs()

	app, err := app.New()
	if err != nil {
		return err
	}
	defer app.Close()

	api, err := api.New(app)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer util.RecoverGoroutinePanic(nil)
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		logrus.Info("signal caught. shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer util.RecoverGoroutinePanic(nil)
		defer wg.Done()
		defer cancel()
		serveAPI(ctx, api)
	}()

	wg.Wait()
	return nil
}

func serveAPI(ctx context.Context, api *api.API) {
	allowedOrigins := api.Config.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	cors := handlers.CORS(
		handlers.AllowCredentials(),
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "OPTIONS", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Cookie", "X-Requested-With", "X-Internal-Key", "Origin", "User-Agent"}),
	)

	router := mux.NewRouter()
	router.Use(cors)
	api.Init(router.PathPrefix("/api").Subrouter().StrictSlash(true))

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		Handler:      router,
		ReadTimeout:  api.Config.ReadTimeout * time.Second,
		WriteTimeout: api.Config.WriteTimeout * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer util.RecoverGoroutinePanic(nil)
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			logrus.Error(err)
		}
		close(done)
	}()

	logrus.Infof("serving notification api at http://127.0.0.1:%d", api.Config.Port)
	if err := s.ListenAndServe(); err != http.ErrServerClosed {
		logrus.Fatal(err)
	}
	<-done
}
