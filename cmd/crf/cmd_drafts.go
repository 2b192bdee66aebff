package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect and prune local draft snapshots",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored drafts, newest first",
	RunE:  runDraftsList,
}

var draftsRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete the draft stored under key",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsRm,
}

func init() {
	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsRmCmd)
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("sin borradores")
		return nil
	}
	for _, key := range keys {
		rec, ok, err := store.Load(key)
		if err != nil || !ok {
			fmt.Printf("%-32s (ilegible)\n", key)
			continue
		}
		fmt.Printf("%-32s %-10s %d valores  %s\n",
			key, rec.Status, len(rec.Values), rec.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDraftsRm(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("borrador %s eliminado\n", args[0])
	return nil
}
