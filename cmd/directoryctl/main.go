// directoryctl обслуживает каталог из командной строки: миграции,
// загрузка фикстур и поиск теми же правилами, что и API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/directory-backend/internal/config"
	"github.com/ignatzorin/directory-backend/internal/logger"
)

var (
	cfg       *config.Config
	verbose   bool
	storeFlag string
)

var rootCmd = &cobra.Command{
	Use:           "directoryctl",
	Short:         "Управление каталогом профилей и групп",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if storeFlag != "" {
			loaded.StoreDriver = storeFlag
		}
		cfg = loaded

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger.Init(level)
		logger.SetTextFormatter()
		logger.Get().SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "подробные логи")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "драйвер хранилища (postgres|memory), по умолчанию STORE_DRIVER")

	rootCmd.AddCommand(migrateCmd, seedCmd, searchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "directoryctl:", err)
		os.Exit(1)
	}
}
