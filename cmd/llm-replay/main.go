package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manishiitg/llm-recorder-go/interfaces"
	"github.com/manishiitg/llm-recorder-go/internal/logging"
)

var logger interfaces.Logger

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "llm-replay",
		Short: "Inspect and capture recorded LLM interactions",
		Long:  "Tooling around llm-recorder storage directories: list and show recorded interactions, and run a recording proxy for SDKs that only need a base URL swap.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// API keys and defaults may live in a local .env
			_ = godotenv.Load(".env")
			logger = logging.NewConsoleLogger(debug)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("dir", "recordings", "interaction storage directory")

	viper.SetEnvPrefix("LLM_RECORDER")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newProxyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
