package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/datalab/go-crf/pkg/api"
	"github.com/datalab/go-crf/pkg/fill"
	"github.com/datalab/go-crf/pkg/form"
	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/session"
	"github.com/datalab/go-crf/pkg/submit"
)

var (
	fillParticipant int64
	fillRecord      string
	fillFresh       bool
	fillGroup       string
	fillDraftOnly   bool
	fillAbandon     string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Capture a form interactively and submit it",
	Long: `Opens a capture session and walks every visible field as a terminal
questionnaire. New sessions resume from the local draft when one exists;
--participant edits an existing record instead, preloading its stored
answers. The session finalizes on completion unless --draft or
--abandon is given.`,
	RunE: runFill,
}

func init() {
	fillCmd.Flags().Int64VarP(&fillParticipant, "participant", "p", 0, "edit an existing participant record")
	fillCmd.Flags().StringVarP(&fillRecord, "record", "r", "", "explicit local draft identifier")
	fillCmd.Flags().BoolVar(&fillFresh, "fresh", false, "discard any stored draft and start clean")
	fillCmd.Flags().StringVarP(&fillGroup, "group", "g", "", "initial group: case or control")
	fillCmd.Flags().BoolVar(&fillDraftOnly, "draft", false, "save a draft instead of finalizing")
	fillCmd.Flags().StringVar(&fillAbandon, "abandon", "", "mark the form not completable with this justification")
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	client := newClient()

	var preload map[string]any
	group := schema.ParseGroup(fillGroup)
	if fillParticipant > 0 {
		participant, err := client.Participant(ctx, fillParticipant)
		if err != nil {
			return err
		}
		preload = preloadFrom(participant)
		group = schema.ParseGroup(participant.Group)
	}

	sess, err := session.Open(ctx, session.Options{
		Provider:         newProvider(),
		RecordID:         fillRecord,
		ParticipantID:    fillParticipant,
		Preload:          preload,
		Fresh:            fillFresh,
		Group:            group,
		Store:            store,
		Backend:          client,
		EditorID:         cfg.EditorID,
		RecruiterID:      cfg.RecruiterID,
		Policy:           auditPolicy(),
		AutosaveInterval: cfg.AutosaveInterval,
		Logger:           &logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	runner := fill.NewRunner(nil)
	if err := runner.Run(ctx, sess); err != nil {
		if errors.Is(err, fill.ErrAborted) {
			if err := sess.SaveDraft(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "captura interrumpida; borrador guardado en %s\n", sess.Key())
			return nil
		}
		return err
	}

	switch {
	case fillAbandon != "":
		if err := sess.SaveIncomplete(ctx, fillAbandon); err != nil {
			return err
		}
		fmt.Println("formulario marcado como no completable")
		return nil

	case fillDraftOnly:
		if err := sess.SaveDraft(); err != nil {
			return err
		}
		fmt.Printf("borrador guardado en %s\n", sess.Key())
		return nil

	default:
		pid, err := sess.Finalize(ctx)
		var incomplete *submit.IncompleteError
		if errors.As(err, &incomplete) {
			fmt.Fprintln(os.Stderr, "el formulario está incompleto; se guardó un borrador local")
			for _, label := range incomplete.Missing {
				fmt.Fprintln(os.Stderr, "  - "+label)
			}
			return err
		}
		if err != nil {
			return err
		}
		fmt.Printf("formulario enviado; participante %d\n", pid)
		return nil
	}
}

// preloadFrom flattens a fetched participant record into the hydrate map:
// stored variable answers keyed by code, plus the baseline demographics.
func preloadFrom(p api.Participant) map[string]any {
	out := make(map[string]any, len(p.Answers)+3)
	for _, ans := range p.Answers {
		out[ans.VariableCode] = ans.Value
	}
	out[form.IDFullName] = p.FullName
	out[form.IDPhone] = p.Phone
	out[form.IDAddress] = p.Address
	return out
}
