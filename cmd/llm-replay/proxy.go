package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manishiitg/llm-recorder-go/internal/proxy"
)

func newProxyCmd() *cobra.Command {
	var port int
	var keep bool

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run a recording proxy for LLM API traffic",
		Long:  "Forwards POST /{url-escaped upstream base}/{path} to the upstream and records each exchange. Point an SDK's base URL at the proxy to capture its traffic.",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := proxy.New(viper.GetString("dir"), logger)
			if !keep {
				if err := srv.Reset(); err != nil {
					return err
				}
			}
			return srv.ListenAndServe(fmt.Sprintf(":%d", port))
		},
	}

	cmd.Flags().IntVar(&port, "port", 8000, "port to listen on")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep existing recordings instead of clearing on start")
	return cmd
}
