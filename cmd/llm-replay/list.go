package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manishiitg/llm-recorder-go/internal/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded interactions in a storage directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := viper.GetString("dir")
			interactions, err := store.New(afero.NewOsFs(), dir, logger).Load()
			if err != nil {
				return err
			}
			if len(interactions) == 0 {
				fmt.Printf("no interactions in %s\n", dir)
				return nil
			}
			for _, it := range interactions {
				status := "ok"
				if it.Failed() {
					status = "error: " + it.CallError
				}
				fmt.Printf("%4d  %s  request %4dB  response %4dB  %s\n",
					it.Index,
					it.RecordedAt.Format("2006-01-02 15:04:05"),
					len(it.Request),
					len(it.Response),
					status,
				)
			}
			return nil
		},
	}
}
