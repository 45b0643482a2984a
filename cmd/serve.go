package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/custompost/auth"
	"github.com/ridoystarlord/custompost/records"
	"github.com/ridoystarlord/custompost/server"
	"github.com/ridoystarlord/custompost/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the custom post HTTP API",
	Long: `Run the HTTP API used by the admin UI.

Endpoints:
  POST   /custom-post/create-table
  GET    /custom-post/tables
  GET    /custom-post-form-fields/{table}
  POST   /custom-post/create/{table}
  GET    /custom-post/list/{table}
  GET    /custom-post/details/{table}/{id}
  POST   /custom-post/update/{table}/{id}
  DELETE /custom-post/delete/{table}/{id}

Uploaded files are stored under storage.root and served from /uploads/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if len(a.cfg.Auth.Tokens) == 0 {
			a.log.Warn().Msg("no auth.tokens configured; every request will be rejected as unauthorized")
		}

		sink := storage.NewDiskSink(a.cfg.Storage.Root)
		policy := auth.AnyAuthenticated{}

		srv := server.New(server.Options{
			Catalog:        a.catalog,
			Provisioner:    a.provisioner(),
			Forms:          a.forms(),
			Records:        records.NewEngine(a.exec, a.catalog, sink, policy, a.log),
			Authenticator:  auth.NewStaticTokens(a.cfg.Auth.Tokens),
			Policy:         policy,
			Uploads:        sink.Fs(),
			MaxUploadBytes: a.cfg.MaxUploadBytes(),
			Logger:         a.log,
		})

		fmt.Printf("🚀 Starting custompost API on http://localhost:%s\n", a.cfg.Server.Port)
		fmt.Println("Press Ctrl+C to stop the server")

		return srv.Run(ctx, ":"+a.cfg.Server.Port, a.cfg.Server.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "Port to run the web server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
