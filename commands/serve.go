package commands

import (
	"context"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/zeu5/fights/records"
	"github.com/zeu5/fights/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	var recordsPath string
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve gomoku sessions over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if recordsPath != "" {
				cfg.Records.Path = recordsPath
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}

			ctx, cancel := interruptContext()
			defer cancel()

			opts := server.Options{Config: cfg, Logger: logger}
			if cfg.Records.Path != "" {
				store, err := records.Open(cfg.Records.Path)
				if err != nil {
					return err
				}
				defer store.Close()
				opts.Store = store
			}
			if cfg.Redis.Addr != "" {
				mirror := server.NewRedisMirror(cfg.Redis)
				defer mirror.Close()
				pctx, pcancel := context.WithTimeout(ctx, 2*time.Second)
				if err := mirror.Ping(pctx); err != nil {
					level.Warn(logger).Log("msg", "redis mirror unreachable", "addr", cfg.Redis.Addr, "err", err)
				}
				pcancel()
				opts.Mirror = mirror
			}
			return server.New(opts).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on, overrides the config file")
	cmd.Flags().StringVar(&recordsPath, "records", "", "Sqlite database for finished games")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address to mirror sessions to")
	return cmd
}
