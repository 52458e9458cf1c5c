package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manishiitg/llm-recorder-go/internal/store"
)

func newShowCmd() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one recorded interaction as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := viper.GetString("dir")
			interactions, err := store.New(afero.NewOsFs(), dir, logger).Load()
			if err != nil {
				return err
			}
			for _, it := range interactions {
				if it.Index != index {
					continue
				}
				out, err := json.MarshalIndent(struct {
					Index int `json:"index"`
					store.Interaction
				}{it.Index, it}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to render interaction: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}
			return fmt.Errorf("no interaction with index %d in %s", index, dir)
		},
	}

	cmd.Flags().IntVar(&index, "index", 1, "interaction index to show")
	return cmd
}
